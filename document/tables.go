package document

// ExtractTables scans classified blocks for tabular regions. It is a stub
// that always returns an empty set: real geometric table detection can
// replace the body without changing the surrounding pipeline's contract
// (structure blocks in, ordered tables out).
func ExtractTables(blocks []StructureBlock) []Table {
	return []Table{}
}
