package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableName(t *testing.T) {
	assert.Equal(t, "users", TableName("User"))
	assert.Equal(t, "orderproducts", TableName("OrderProduct"))
}

func TestTables_DependencyOrder(t *testing.T) {
	tables := Tables()
	require.Len(t, tables, 4)

	seen := map[string]bool{}
	for _, table := range tables {
		for _, fk := range table.ForeignKeys {
			if fk.RefTable != table.Name {
				assert.True(t, seen[fk.RefTable], "%s references %s before it is created", table.Name, fk.RefTable)
			}
		}
		seen[table.Name] = true
	}
}

func TestTables_SharedTimestamps(t *testing.T) {
	for _, table := range Tables() {
		names := table.ColumnNames()
		assert.Contains(t, names, "created_at", table.Name)
		assert.Contains(t, names, "updated_at", table.Name)
	}
}

func TestOrderProductsTable_CreateSQL(t *testing.T) {
	ddl := OrderProductsTable().CreateSQL()

	assert.True(t, strings.HasPrefix(ddl, "CREATE TABLE IF NOT EXISTS orderproducts ("))
	assert.Contains(t, ddl, "PRIMARY KEY (order_id, product_id)")
	assert.Contains(t, ddl, "CONSTRAINT orderproducts_order_id_fkey FOREIGN KEY (order_id) REFERENCES orders (order_id) ON DELETE CASCADE")
	assert.Contains(t, ddl, "CONSTRAINT orderproducts_product_id_fkey FOREIGN KEY (product_id) REFERENCES products (product_id) ON DELETE RESTRICT")
	assert.Contains(t, ddl, "quantity INTEGER NOT NULL")
}

func TestUsersTable_CreateSQL(t *testing.T) {
	ddl := UsersTable().CreateSQL()

	assert.Contains(t, ddl, "telegram_id BIGINT NOT NULL")
	assert.Contains(t, ddl, "language_code VARCHAR(10) NOT NULL")
	assert.Contains(t, ddl, "user_name VARCHAR(255),")
	assert.Contains(t, ddl, "created_at TIMESTAMP NOT NULL DEFAULT NOW()")
	assert.Contains(t, ddl, "REFERENCES users (telegram_id) ON DELETE SET NULL")
}

func TestProductsTable_CreateSQL(t *testing.T) {
	ddl := ProductsTable().CreateSQL()

	assert.Contains(t, ddl, "product_id INTEGER GENERATED BY DEFAULT AS IDENTITY NOT NULL")
	assert.Contains(t, ddl, "price NUMERIC(16, 4) NOT NULL")
	assert.Contains(t, ddl, "description VARCHAR(3000),")
}

func TestDropSQL_ReverseOrder(t *testing.T) {
	drop := DropSQL()

	assert.Less(t, strings.Index(drop, "orderproducts"), strings.Index(drop, "DROP TABLE IF EXISTS orders;"))
	assert.Less(t, strings.Index(drop, "DROP TABLE IF EXISTS orders;"), strings.Index(drop, "DROP TABLE IF EXISTS users;"))
}
