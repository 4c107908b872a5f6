// Package plugincache persists the TFLint plugin directory between runs.
//
// The main step restores the directory under a key derived from the runner
// OS and a hash of the TFLint config files, and records what it did in step
// state. The post step reads that state back and saves the directory under
// the primary key unless it was restored from that exact key. Cache trouble
// never fails a run.
package plugincache
