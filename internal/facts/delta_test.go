package facts

import "testing"

func TestComputeDeltaAddsAndRemoves(t *testing.T) {
	prev := Tables{
		Attributes: []AttributeRow{
			{Number: 1, Code: 0x01, Name: "Strength", Description: "(No definition found)"},
			{Number: 2, Code: 0x02, Name: "Speed", Description: "How fast."},
		},
		OrphanDefinitions: []OrphanRow{
			{Code: 0x09, CodeHex: "0x0009", Description: "nine"},
		},
	}
	next := Tables{
		Attributes: []AttributeRow{
			{Number: 1, Code: 0x02, Name: "Speed", Description: "How fast."},
			{Number: 2, Code: 0x01, Name: "Strength", Description: "How strong the worker is."},
		},
	}

	delta := ComputeDelta(prev, next)

	if len(delta.Added.Attributes) != 1 || delta.Added.Attributes[0].Description != "How strong the worker is." {
		t.Fatalf("expected new Strength definition added, got %+v", delta.Added.Attributes)
	}
	if len(delta.Removed.Attributes) != 1 || delta.Removed.Attributes[0].Description != "(No definition found)" {
		t.Fatalf("expected old Strength row removed, got %+v", delta.Removed.Attributes)
	}
	if len(delta.Removed.OrphanDefinitions) != 1 || delta.Removed.OrphanDefinitions[0].Code != 0x09 {
		t.Fatalf("expected orphan removed, got %+v", delta.Removed.OrphanDefinitions)
	}
	if len(delta.Added.OrphanDefinitions) != 0 {
		t.Fatalf("expected no orphan added, got %+v", delta.Added.OrphanDefinitions)
	}
	if delta.Empty() {
		t.Fatalf("delta should not be empty")
	}
}

func TestComputeDeltaIgnoresRenumbering(t *testing.T) {
	prev := Tables{Attributes: []AttributeRow{{Number: 1, Code: 0x05, Name: "A"}}}
	next := Tables{Attributes: []AttributeRow{{Number: 7, Code: 0x05, Name: "A"}}}

	if delta := ComputeDelta(prev, next); !delta.Empty() {
		t.Fatalf("renumbered row should not count as a change: %+v", delta)
	}
}
