package db

import (
	"context"
	"testing"
)

func TestPutGetRecord(t *testing.T) {
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer db.Close()
	ctx := context.Background()

	if _, ok, err := GetRecord(ctx, db, "missing"); err != nil || ok {
		t.Fatalf("GetRecord(missing) = ok %v, err %v; want false, nil", ok, err)
	}

	if err := PutRecord(ctx, db, "strategy_plan.md", "v1", 100); err != nil {
		t.Fatalf("PutRecord() error = %v", err)
	}
	if err := PutRecord(ctx, db, "strategy_plan.md", "v2", 200); err != nil {
		t.Fatalf("PutRecord() overwrite error = %v", err)
	}

	value, ok, err := GetRecord(ctx, db, "strategy_plan.md")
	if err != nil {
		t.Fatalf("GetRecord() error = %v", err)
	}
	if !ok || value != "v2" {
		t.Errorf("GetRecord() = %q, %v; want v2, true", value, ok)
	}
}
