package facts

// FilterTablesByFiles returns a new Tables containing only rows whose file or
// path is present in the provided file set.
func FilterTablesByFiles(tables Tables, files map[string]bool) Tables {
	out := emptyTables()
	if len(files) == 0 {
		return out
	}

	for _, row := range tables.Files {
		if files[row.Path] {
			out.Files = append(out.Files, row)
		}
	}
	for _, row := range tables.Ports {
		if files[row.File] {
			out.Ports = append(out.Ports, row)
		}
	}
	for _, row := range tables.Regs {
		if files[row.File] {
			out.Regs = append(out.Regs, row)
		}
	}
	for _, row := range tables.Usages {
		if files[row.File] {
			out.Usages = append(out.Usages, row)
		}
	}
	for _, row := range tables.Blocks {
		if files[row.File] {
			out.Blocks = append(out.Blocks, row)
		}
	}
	for _, row := range tables.Assignments {
		if files[row.File] {
			out.Assignments = append(out.Assignments, row)
		}
	}
	for _, row := range tables.Keywords {
		if files[row.File] {
			out.Keywords = append(out.Keywords, row)
		}
	}
	return out
}
