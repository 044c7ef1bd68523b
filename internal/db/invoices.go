package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"autochase/internal/models"
)

func (d *DB) CreateInvoice(ctx context.Context, workspace string, inv models.Invoice) error {
	query := `
        INSERT INTO ac_invoices (
            id, workspace_id, client_name, client_email, invoice_number,
            amount_cents, currency, due_date, paid, payment_link, created_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := d.Pool.Exec(ctx, query,
		inv.ID, workspace, inv.ClientName, inv.ClientEmail, inv.InvoiceNumber,
		inv.AmountCents, inv.Currency, inv.DueDate, inv.Paid, inv.PaymentLink, inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (d *DB) GetInvoices(ctx context.Context, workspace string) ([]models.Invoice, error) {
	rows, err := d.Pool.Query(ctx, `
        SELECT id, client_name, client_email, invoice_number, amount_cents,
               currency, due_date, paid, payment_link, created_at
        FROM ac_invoices
        WHERE workspace_id = $1
        ORDER BY due_date, invoice_number`, workspace)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoices for workspace %s: %w", workspace, err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		var inv models.Invoice
		err := rows.Scan(
			&inv.ID, &inv.ClientName, &inv.ClientEmail, &inv.InvoiceNumber,
			&inv.AmountCents, &inv.Currency, &inv.DueDate, &inv.Paid,
			&inv.PaymentLink, &inv.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (d *DB) GetInvoice(ctx context.Context, workspace, id string) (models.Invoice, error) {
	var inv models.Invoice
	err := d.Pool.QueryRow(ctx, `
        SELECT id, client_name, client_email, invoice_number, amount_cents,
               currency, due_date, paid, payment_link, created_at
        FROM ac_invoices
        WHERE workspace_id = $1 AND id = $2`, workspace, id).Scan(
		&inv.ID, &inv.ClientName, &inv.ClientEmail, &inv.InvoiceNumber,
		&inv.AmountCents, &inv.Currency, &inv.DueDate, &inv.Paid,
		&inv.PaymentLink, &inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Invoice{}, fmt.Errorf("no invoice found for id %s", id)
		}
		return models.Invoice{}, fmt.Errorf("failed to get invoice %s: %w", id, err)
	}
	return inv, nil
}

func (d *DB) SetInvoicePaid(ctx context.Context, workspace, id string, paid bool) error {
	result, err := d.Pool.Exec(ctx, `
        UPDATE ac_invoices SET paid = $1 WHERE workspace_id = $2 AND id = $3`,
		paid, workspace, id)
	if err != nil {
		return fmt.Errorf("failed to update invoice %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("no invoice updated for id %s", id)
	}
	return nil
}
