/*
Package otquery answers questions about a font which need more than one table
to decide: names, font wide metrics, glyph metrics and script support.

Functions of this package never fail. Missing or broken tables result in zero
values, and decode errors are reported to the tracer.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otquery

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'fontkit'
func tracer() tracing.Trace {
	return tracing.Select("fontkit")
}
