package postgres

// Schema creates the tables the postgres repositories read and write
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id           TEXT PRIMARY KEY,
	type         TEXT NOT NULL DEFAULT '',
	is_superuser BOOLEAN NOT NULL DEFAULT FALSE,
	plan         TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS orders (
	id            TEXT PRIMARY KEY,
	account_id    TEXT NOT NULL REFERENCES accounts (id),
	service_id    TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	registered_on DATE NOT NULL,
	cancelled_on  DATE,
	billed_on     DATE,
	billed_until  DATE,
	ignore        BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_orders_account_service ON orders (account_id, service_id);

CREATE TABLE IF NOT EXISTS service_rates (
	service_id TEXT NOT NULL,
	plan       TEXT NOT NULL DEFAULT '',
	quantity   BIGINT NOT NULL,
	price      NUMERIC(20, 8) NOT NULL,
	PRIMARY KEY (service_id, plan, quantity)
);
`
