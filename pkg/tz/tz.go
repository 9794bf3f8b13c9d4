package tz

import "time"

// Home is the organization's home timezone (America/New_York, with
// automatic DST), used when formatting meeting times for announcements.
var Home *time.Location

func init() {
	var err error
	Home, err = time.LoadLocation("America/New_York")
	if err != nil {
		panic("tz: load America/New_York: " + err.Error())
	}
}
