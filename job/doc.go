// Package job defines the simulated translation job model and the store
// contract that backends implement.
package job
