package naming_test

import (
	"testing"

	"schema-export/internal/naming"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	s, err := naming.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "OrderItem", s.TableName("OrderItem"))

	_, err = naming.Lookup("com.example.MyNamingStrategy")
	require.Error(t, err)

	assert.Equal(t, []string{"default", "improved", "lower", "upper"}, naming.Names())
}

func TestImproved(t *testing.T) {
	s, err := naming.Lookup("improved")
	require.NoError(t, err)

	cases := map[string]string{
		"OrderItem":   "order_item",
		"orderItemId": "order_item_id",
		"HTTPServer":  "http_server",
		"address2Id":  "address2_id",
		"already_ok":  "already_ok",
		"Snake_Case":  "snake_case",
	}
	for in, want := range cases {
		assert.Equal(t, want, s.ColumnName(in), in)
	}
	assert.Equal(t, "fk_order_item_order_id", s.ForeignKeyName("OrderItem", "orderId"))
}

func TestCaseStrategies(t *testing.T) {
	upper, err := naming.Lookup("UPPER")
	require.NoError(t, err)
	assert.Equal(t, "USERS", upper.TableName("users"))
	assert.Equal(t, "FK_ORDERS_USER_ID", upper.ForeignKeyName("orders", "user_id"))

	lower, err := naming.Lookup("lower")
	require.NoError(t, err)
	assert.Equal(t, "users", lower.TableName("Users"))
}
