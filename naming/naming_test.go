package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnake(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Username", "username"},
		{"FullName", "full_name"},
		{"HTTPCode", "http_code"},
		{"UserID", "user_id"},
		{"getHTTPResponse", "get_http_response"},
		{"userInfo", "user_info"},
		{"OrderItems", "order_items"},
		{"already_snake", "already_snake"},
		{"Address2Line", "address2_line"},
		{"A", "a"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Snake(tt.input))
		})
	}
}

func TestPascal(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"order_items", "OrderItems"},
		{"created_at", "CreatedAt"},
		{"full-admin", "FullAdmin"},
		{"hello world", "HelloWorld"},
		{"__a__b", "AB"},
		{"userID", "UserId"},
		{"ID", "Id"},
		{"HTTPServer", "HttpServer"},
		{"APIKey", "ApiKey"},
		{"UserInfo", "UserInfo"},
		{"a", "A"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Pascal(tt.input))
		})
	}
}

func TestCamel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"order_items", "orderItems"},
		{"UserInfo", "userInfo"},
		{"userInfo", "userInfo"},
		{"id", "id"},
		{"ID", "id"},
		{"getHTTPResponse", "getHttpResponse"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Camel(tt.input))
		})
	}
}

func TestIdempotent(t *testing.T) {
	for _, s := range []string{"OrderItems", "UserInfo", "Id", "Address2Line"} {
		assert.Equal(t, s, Pascal(s), "Pascal(%q)", s)
	}
	for _, s := range []string{"orderItems", "userInfo", "id"} {
		assert.Equal(t, s, Camel(s), "Camel(%q)", s)
	}
	for _, s := range []string{"order_items", "user_info", "id", "address2_line"} {
		assert.Equal(t, s, Snake(s), "Snake(%q)", s)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"order_items", "OrderItems"},
		{"userInfo", "UserInfo"},
		{"created-at", "CreatedAt"},
		{"Total Price", "TotalPrice"},
		{"OrderItems", "OrderItems"},
		{"address2_line", "Address2Line"},
		{"x", "X"},
		{"customer_order_line_items", "CustomerOrderLineItems"},
		{"isActive", "IsActive"},
		{"userID", "UserId"},
		{"ID", "Id"},
		{"HTTPServer", "HttpServer"},
		{"APIKey", "ApiKey"},
		{"getHTTPResponse", "GetHttpResponse"},
		{"order_ID", "OrderId"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := Pascal(tt.input)
			assert.Equal(t, tt.expected, p)
			assert.Equal(t, p, Pascal(Snake(p)))
		})
	}
}

func TestKebab(t *testing.T) {
	assert.Equal(t, "order-items", Kebab("OrderItems"))
	assert.Equal(t, "order-items", Kebab("order_items"))
	assert.Equal(t, "", Kebab(""))
}

func TestPackage(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"order_items", "orderitems"},
		{"Users", "users"},
		{"user-accounts", "useraccounts"},
		{"2fa_codes", "pkg2facodes"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Package(tt.input))
		})
	}
}

func TestPluralSingular(t *testing.T) {
	assert.Equal(t, "order_items", Plural("order_item"))
	assert.Equal(t, "OrderItems", Plural("OrderItem"))
	assert.Equal(t, "categories", Plural("category"))
	assert.Equal(t, "people", Plural("person"))
	assert.Equal(t, "order_item", Singular("order_items"))
	assert.Equal(t, "Category", Singular("Categories"))
	assert.Equal(t, "metadata", Plural("metadata"))
	assert.Equal(t, "", Plural(""))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Order items", Humanize("order_items"))
	assert.Equal(t, "Order items", Humanize("OrderItems"))
}
