// Package domain contains the core entities of the user directory. These
// types are free of transport and persistence concerns; the HTTP layer and
// the storage backends each keep their own shapes and map to and from them.
package domain
