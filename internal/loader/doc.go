// Package loader turns canonical keys and raw topology data into validated
// domain.Topology snapshots.
//
// Loading never fails on element-level problems. Duplicate nodes, empty node
// identifiers, dangling links and links with a NaN or infinite weight are
// dropped, recorded in a Report and logged at warn level. Negative finite
// weights are kept and only logged. Only an unknown library key or missing
// raw data is returned as an error.
package loader
