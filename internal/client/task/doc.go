// Package task drives one remote operation at a time through upload, remote
// processing and result retrieval.
//
// A Controller owns a single models.Task. Everything that can change it
// (upload progress, acceptance, progress events, terminal success or
// failure, cancel, reset) is an event applied by one transition function.
// Events carry the generation of the task they belong to; Cancel, Reset and a
// new Submit start a new generation, so late callbacks from an aborted upload
// or a torn down subscription are dropped.
//
// Overall progress is the phase-local progress rescaled into the band owned
// by the current phase (see Bands). It never decreases within a task and is
// 100 exactly when the task is completed.
package task
