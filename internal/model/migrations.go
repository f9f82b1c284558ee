package model

import "github.com/roach88/shelby/internal/store"

// core holds every table of the first schema version.
var core = store.Both(Memberships, Documents)

// Migrations returns the schema bundles in the order they are applied.
//
// The scripts are generated from the table declarations, but a released
// bundle must never change: databases past it will not run it again. A
// schema change goes into a new bundle appended here. The generated
// scripts are pinned by testdata/golden/migrations.golden.
func Migrations() []store.Migration {
	return []store.Migration{
		{
			Name: "core",
			Up:   store.CreateScript(core),
			Down: store.DropScript(store.Tables(core)...),
		},
		{
			Name: "accounting",
			Up:   store.CreateScriptAfter(core, Entries),
			Down: store.DropScript(store.TablesAfter(core, Entries)...),
		},
	}
}

// Schema returns every table in creation order.
func Schema() []*store.Table {
	return store.Tables(core, Entries)
}
