// Package schema declares the shop tables as Go values and renders them to DDL.
//
// Tables are built from small shared fragments (timestamps, identity keys,
// user references) instead of hand-written CREATE statements, so the
// declared model and the executed SQL cannot drift apart.
package schema

import (
	"fmt"
	"strings"
)

// Action is a foreign key ON DELETE action.
type Action string

const (
	Cascade  Action = "CASCADE"
	SetNull  Action = "SET NULL"
	Restrict Action = "RESTRICT"
	NoAction Action = "NO ACTION"
)

// Column describes one table column.
type Column struct {
	Name     string
	Type     string
	NotNull  bool
	Default  string
	Identity bool
}

// ForeignKey describes a single-column reference to another table.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
	OnDelete  Action
}

// Table describes a table, its primary key and its foreign keys.
type Table struct {
	Name        string
	Columns     []Column
	PrimaryKey  []string
	ForeignKeys []ForeignKey
}

// TableName derives a table name from an entity name: "OrderProduct" -> "orderproducts".
func TableName(entity string) string {
	return strings.ToLower(entity) + "s"
}

// Timestamps is the created_at / updated_at fragment shared by every table.
// updated_at is refreshed by the statements that modify a row.
func Timestamps() []Column {
	return []Column{
		{Name: "created_at", Type: "TIMESTAMP", NotNull: true, Default: "NOW()"},
		{Name: "updated_at", Type: "TIMESTAMP", NotNull: true, Default: "NOW()"},
	}
}

func intPK(name string) Column {
	return Column{Name: name, Type: "INTEGER", NotNull: true, Identity: true}
}

func str255(name string, notNull bool) Column {
	return Column{Name: name, Type: "VARCHAR(255)", NotNull: notNull}
}

func userFK(column string) ForeignKey {
	return ForeignKey{Column: column, RefTable: Users, RefColumn: "telegram_id", OnDelete: SetNull}
}

// Table names.
var (
	Users         = TableName("User")
	Orders        = TableName("Order")
	Products      = TableName("Product")
	OrderProducts = TableName("OrderProduct")
)

// UsersTable is keyed by the externally supplied telegram id.
func UsersTable() Table {
	return Table{
		Name: Users,
		Columns: append([]Column{
			{Name: "telegram_id", Type: "BIGINT", NotNull: true},
			str255("full_name", true),
			str255("user_name", false),
			{Name: "language_code", Type: "VARCHAR(10)", NotNull: true},
			{Name: "referrer_id", Type: "BIGINT"},
		}, Timestamps()...),
		PrimaryKey:  []string{"telegram_id"},
		ForeignKeys: []ForeignKey{userFK("referrer_id")},
	}
}

// OrdersTable keeps user_id nullable so ON DELETE SET NULL can apply.
func OrdersTable() Table {
	return Table{
		Name: Orders,
		Columns: append([]Column{
			intPK("order_id"),
			{Name: "user_id", Type: "BIGINT"},
		}, Timestamps()...),
		PrimaryKey:  []string{"order_id"},
		ForeignKeys: []ForeignKey{userFK("user_id")},
	}
}

func ProductsTable() Table {
	return Table{
		Name: Products,
		Columns: append([]Column{
			intPK("product_id"),
			str255("title", true),
			{Name: "description", Type: "VARCHAR(3000)"},
			{Name: "price", Type: "NUMERIC(16, 4)", NotNull: true},
		}, Timestamps()...),
		PrimaryKey: []string{"product_id"},
	}
}

// OrderProductsTable is the order/product association carrying a quantity.
func OrderProductsTable() Table {
	return Table{
		Name: OrderProducts,
		Columns: append([]Column{
			{Name: "order_id", Type: "INTEGER", NotNull: true},
			{Name: "product_id", Type: "INTEGER", NotNull: true},
			{Name: "quantity", Type: "INTEGER", NotNull: true},
		}, Timestamps()...),
		PrimaryKey: []string{"order_id", "product_id"},
		ForeignKeys: []ForeignKey{
			{Column: "order_id", RefTable: Orders, RefColumn: "order_id", OnDelete: Cascade},
			{Column: "product_id", RefTable: Products, RefColumn: "product_id", OnDelete: Restrict},
		},
	}
}

// Tables returns every table in dependency order.
func Tables() []Table {
	return []Table{UsersTable(), OrdersTable(), ProductsTable(), OrderProductsTable()}
}

func (c Column) definition() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteString(" ")
	b.WriteString(c.Type)
	if c.Identity {
		b.WriteString(" GENERATED BY DEFAULT AS IDENTITY")
	}
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.Default)
	}
	return b.String()
}

// ColumnNames returns the column names in declaration order.
func (t Table) ColumnNames() []string {
	names := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		names = append(names, c.Name)
	}
	return names
}

// CreateSQL renders an idempotent CREATE TABLE statement.
//
// Foreign keys use PostgreSQL's default "<table>_<column>_fkey" naming,
// which the error classifier relies on.
func (t Table) CreateSQL() string {
	lines := make([]string, 0, len(t.Columns)+len(t.ForeignKeys)+1)
	for _, c := range t.Columns {
		lines = append(lines, c.definition())
	}

	if len(t.PrimaryKey) > 0 {
		lines = append(lines, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(t.PrimaryKey, ", ")))
	}

	for _, fk := range t.ForeignKeys {
		lines = append(lines, fmt.Sprintf(
			"CONSTRAINT %s_%s_fkey FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s",
			t.Name, fk.Column, fk.Column, fk.RefTable, fk.RefColumn, fk.OnDelete,
		))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n);", t.Name, strings.Join(lines, ",\n    "))
}

// DropSQL renders DROP TABLE IF EXISTS.
func (t Table) DropSQL() string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s;", t.Name)
}

// CreateSQL renders the whole schema in dependency order.
func CreateSQL() string {
	tables := Tables()
	stmts := make([]string, 0, len(tables))
	for _, t := range tables {
		stmts = append(stmts, t.CreateSQL())
	}
	return strings.Join(stmts, "\n\n")
}

// DropSQL renders the whole schema teardown in reverse dependency order.
func DropSQL() string {
	tables := Tables()
	stmts := make([]string, 0, len(tables))
	for i := len(tables) - 1; i >= 0; i-- {
		stmts = append(stmts, tables[i].DropSQL())
	}
	return strings.Join(stmts, "\n")
}
