package db

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`create table if not exists products (
        id bigserial primary key,
        name text not null unique,
        image_url text not null default '',
        stock integer not null,
        updated_at_utc timestamptz not null default now()
    )`,
	`create table if not exists order_lines (
        id bigserial primary key,
        order_group_id bigint not null,
        product_id bigint not null,
        quantity integer not null check (quantity > 0),
        customer_name text not null,
        customer_email text not null,
        customer_address text not null,
        created_at_utc timestamptz not null default now(),
        unique (order_group_id, product_id)
    )`,
	`create index if not exists ix_order_lines_group on order_lines (order_group_id)`,
	`create table if not exists order_group_sequence (
        name text primary key,
        last_id bigint not null
    )`,
	`create table if not exists invoices (
        id bigserial primary key,
        order_group_id bigint not null unique,
        total numeric(12,2) not null,
        created_at_utc timestamptz not null default now()
    )`,
	`create table if not exists outbox_messages (
        id uuid primary key,
        origin text not null default '',
        type text not null,
        payload_json text not null,
        occurred_at_utc timestamptz not null,
        retry_count integer not null default 0,
        processed_at_utc timestamptz null
    )`,
	`alter table outbox_messages add column if not exists origin text not null default ''`,
	`drop index if exists ix_outbox_pending`,
	`create index if not exists ix_outbox_pending_origin on outbox_messages (origin, occurred_at_utc) where processed_at_utc is null`,
}

// Migrate creates the tables both services use. Every statement is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
