// Package storage provides the route table and the file operations around it.
//
// The package offers:
// 1. RouteTable - the immutable path to route mapping served by the dispatcher.
// 2. LoadRouteTable - builds a table from a configuration file, refusing invalid files.
// 3. WriteFileAtomic - replaces a file through a temporary sibling and a rename.
package storage
