package pipeline

import (
	"seedgen/sink"
)

const (
	TableUsers  = "raw_users"
	TableEvents = "raw_events"
	TableOrders = "raw_orders"
)

// TableSchemas returns the destination tables in write order. The column
// types stick to the portable subset understood by sqlite, postgres and
// mysql alike; timestamps travel as formatted TEXT.
func TableSchemas() []sink.TableSchema {
	return []sink.TableSchema{
		{
			Name: TableUsers,
			CreateSQL: `CREATE TABLE ` + TableUsers + ` (
	user_id BIGINT NOT NULL,
	username TEXT,
	email TEXT,
	first_name TEXT,
	last_name TEXT,
	created_at TEXT NOT NULL,
	country TEXT,
	city TEXT,
	referrer TEXT,
	is_active BOOLEAN
)`,
			Indexes: []string{
				"CREATE INDEX idx_users_id ON " + TableUsers + "(user_id)",
				"CREATE INDEX idx_users_created ON " + TableUsers + "(created_at)",
				"CREATE INDEX idx_users_country ON " + TableUsers + "(country)",
			},
		},
		{
			Name: TableEvents,
			CreateSQL: `CREATE TABLE ` + TableEvents + ` (
	event_id BIGINT NOT NULL,
	user_id BIGINT NOT NULL,
	session_id TEXT,
	event_type TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	utm_source TEXT,
	utm_medium TEXT,
	device_type TEXT,
	duration_seconds BIGINT,
	revenue DOUBLE PRECISION
)`,
			Indexes: []string{
				"CREATE INDEX idx_events_user ON " + TableEvents + "(user_id)",
				"CREATE INDEX idx_events_timestamp ON " + TableEvents + "(timestamp)",
				"CREATE INDEX idx_events_type ON " + TableEvents + "(event_type)",
			},
		},
		{
			Name: TableOrders,
			CreateSQL: `CREATE TABLE ` + TableOrders + ` (
	order_id BIGINT NOT NULL,
	user_id BIGINT NOT NULL,
	order_number TEXT,
	order_sequence BIGINT NOT NULL,
	order_timestamp TEXT NOT NULL,
	product_category TEXT NOT NULL,
	quantity BIGINT,
	amount DOUBLE PRECISION NOT NULL,
	currency TEXT,
	payment_method TEXT,
	discount_amount DOUBLE PRECISION,
	discount_code TEXT
)`,
			Indexes: []string{
				"CREATE INDEX idx_orders_user ON " + TableOrders + "(user_id)",
				"CREATE INDEX idx_orders_created ON " + TableOrders + "(order_timestamp)",
				"CREATE INDEX idx_orders_category ON " + TableOrders + "(product_category)",
			},
		},
	}
}
