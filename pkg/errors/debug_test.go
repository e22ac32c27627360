package errors

import (
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpSurfacesPgxDiagnostics(t *testing.T) {
	driverErr := &pgconn.PgError{
		Code:           "23502",
		Message:        "null value in column",
		TableName:      "orders",
		ColumnName:     "customer_name",
		ConstraintName: "orders_customer_name_check",
		Detail:         "Failing row contains (null).",
	}
	err := Wrap(CodeInternal, fmt.Errorf("saving order: %w", driverErr), "creating order")

	dump := Dump(err)

	if dump.Code != CodeInternal {
		t.Fatalf("code = %q, want %q", dump.Code, CodeInternal)
	}
	if dump.PGCode != "23502" {
		t.Fatalf("pg code = %q", dump.PGCode)
	}
	if dump.PGTable != "orders" {
		t.Fatalf("pg table = %q", dump.PGTable)
	}
	if dump.PGColumn != "customer_name" {
		t.Fatalf("pg column = %q", dump.PGColumn)
	}
	if dump.PGConstraint != "orders_customer_name_check" {
		t.Fatalf("pg constraint = %q", dump.PGConstraint)
	}
}

func TestDumpSurfacesPqDiagnostics(t *testing.T) {
	driverErr := &pq.Error{
		Code:       "23505",
		Message:    "duplicate key value",
		Table:      "pricing_rules",
		Column:     "id",
		Constraint: "pricing_rules_pkey",
	}

	dump := Dump(fmt.Errorf("updating rules: %w", driverErr))

	if dump.PGCode != "23505" {
		t.Fatalf("pg code = %q", dump.PGCode)
	}
	if dump.PGColumn != "id" {
		t.Fatalf("pg column = %q", dump.PGColumn)
	}
	if dump.PGTable != "pricing_rules" {
		t.Fatalf("pg table = %q", dump.PGTable)
	}
}

func TestDumpNilError(t *testing.T) {
	dump := Dump(nil)
	if dump.TopMessage != "" || len(dump.Chain) != 0 {
		t.Fatalf("expected empty dump, got %+v", dump)
	}
}
