// Package hieroxml renders the entity graph as a DOCTYPE-qualified hieroXML
// document. Assembly happens once into a backend-neutral node tree; two
// interchangeable backends serialize it, selected by name at startup.
package hieroxml
