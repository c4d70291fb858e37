package shaders

import (
	_ "embed"
)

//go:embed gi_sdf.wgsl
var SDFWGSL string

//go:embed gi_probe.wgsl
var ProbeWGSL string

//go:embed gi_bounce.wgsl
var BounceWGSL string

//go:embed gi_blend.wgsl
var BlendWGSL string

//go:embed gi_filter.wgsl
var FilterWGSL string

//go:embed gi_composite.wgsl
var CompositeWGSL string

//go:embed text.wgsl
var TextWGSL string
