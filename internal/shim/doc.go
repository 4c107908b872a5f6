// Package shim implements the tflint wrapper: it runs the relocated real
// binary with the caller's arguments, captures stdout and stderr while
// passing them through, publishes them as step outputs and maps the exit
// code to success or failure.
package shim
