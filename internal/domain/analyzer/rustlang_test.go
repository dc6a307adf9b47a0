package analyzer

import (
	"testing"
)

func TestRustAnalyzer(t *testing.T) {
	a := NewRustAnalyzer()

	t.Run("structs enums traits and uses", func(t *testing.T) {
		src := "use std::collections::HashMap;\n" +
			"\n" +
			"pub struct User {\n" +
			"    name: String,\n" +
			"}\n" +
			"\n" +
			"enum Status {\n" +
			"    Active,\n" +
			"}\n" +
			"\n" +
			"pub trait Store {\n" +
			"    fn get(&self) -> u32;\n" +
			"}\n"

		res := a.Analyze(pyLines(src), "types.rs")

		if res.Facts.Language != "Rust" {
			t.Fatalf("language = %s", res.Facts.Language)
		}

		for _, want := range []string{"User", "Status", "Store"} {
			if !containsString(res.Facts.Classes, want) {
				t.Errorf("missing type %q: %v", want, res.Facts.Classes)
			}
		}

		if !containsString(res.Facts.Imports, "std::collections::HashMap") {
			t.Errorf("imports = %v", res.Facts.Imports)
		}
	})

	t.Run("main function is an entry point", func(t *testing.T) {
		src := "fn calculate() -> i32 { 1 }\n" +
			"pub fn process() {}\n" +
			"async fn fetch() {}\n" +
			"fn main() {\n" +
			"    println!(\"hi\");\n" +
			"}\n"

		res := a.Analyze(pyLines(src), "main.rs")

		for _, want := range []string{"calculate", "process", "async fetch", "main"} {
			if !containsString(res.Facts.Functions, want) {
				t.Errorf("missing function %q: %v", want, res.Facts.Functions)
			}
		}

		if len(res.Facts.EntryPoints) != 1 || res.Facts.EntryPoints[0] != "fn main" {
			t.Errorf("entry points = %v", res.Facts.EntryPoints)
		}

		if res.Facts.Category != "application" {
			t.Errorf("category = %s", res.Facts.Category)
		}
	})

	t.Run("attributes and doc comments prefix declarations", func(t *testing.T) {
		src := "/// A configuration entry.\n" +
			"#[derive(Debug, Clone)]\n" +
			"pub struct Entry {\n" +
			"    key: String,\n" +
			"}\n"

		res := a.Analyze(pyLines(src), "entry.rs")

		if len(res.Structure) == 0 || res.Structure[0].Start != 0 || res.Structure[0].End != 3 {
			t.Errorf("attribute/doc prefix not kept: %v", res.Structure)
		}

		if !res.Facts.HasDocs {
			t.Error("doc comments should mark HasDocs")
		}
	})

	t.Run("module docs kept for structure", func(t *testing.T) {
		src := "//! Core data types.\n" +
			"//! More detail.\n" +
			"\n" +
			"pub struct X;\n"

		res := a.Analyze(pyLines(src), "lib.rs")

		if len(res.Structure) == 0 || res.Structure[0].Start != 0 {
			t.Errorf("module docs missing from structure: %v", res.Structure)
		}
	})

	t.Run("impl blocks recorded", func(t *testing.T) {
		src := "impl Store for MemStore {\n" +
			"    fn get(&self) -> u32 { 0 }\n" +
			"}\n"

		res := a.Analyze(pyLines(src), "store.rs")

		if !containsString(res.Facts.Exports, "impl Store") {
			t.Errorf("exports = %v", res.Facts.Exports)
		}
	})
}
