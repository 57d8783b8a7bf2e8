// Package cron runs actions on calendar schedules.
//
// Each schedule gets its own goroutine that sleeps until the next occurrence,
// runs the action, and loops. A call to Schedule replaces the whole set: the
// previous generation is canceled before the new one starts, and every job
// checks its generation before firing and before re-arming.
package cron
