// Package feed loads and generates the item feeds the masonry tools lay out.
//
// A feed is an ordered list of Items. Each item carries the data a host needs
// to render it (Title, Text), an optional known Height, and its column span
// configuration. Feeds are read from JSON or TOML:
//
//	[[items]]
//	title  = "Harbor at dusk"
//	height = 240
//	span   = 2
//
//	[[items]]
//	title = "Fig tart"
//	span  = { md = 1, lg = 2 }
//
// Items without an ID get a random UUID on load. Generate builds
// deterministic demo feeds for the viewer and for tests.
//
// The package also reads the grid configuration file (see Config).
package feed
