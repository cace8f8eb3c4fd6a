package storage

import (
	"context"
	"database/sql"
	"fmt"

	"accountant/internal/core"
	"accountant/internal/ports"
)

func insertRecords(ctx context.Context, q DBTX, s *core.Snapshot) error {
	exec := func(what, query string, args ...any) error {
		if _, err := q.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", what, err)
		}
		return nil
	}

	for _, c := range s.Clients {
		if err := exec("client "+c.ID, `INSERT OR REPLACE INTO clients
			(id, name, name_ar, email, phone, company, company_ar, address, tax_number, notes, is_active)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.NameAr, c.Email, c.Phone, c.Company, c.CompanyAr, c.Address, c.TaxNumber, c.Notes, boolArg(c.IsActive)); err != nil {
			return err
		}
	}
	for _, p := range s.Projects {
		var budget any
		if p.Budget != nil {
			budget = core.ToMinor(*p.Budget)
		}
		if err := exec("project "+p.ID, `INSERT OR REPLACE INTO projects
			(id, client_id, name, name_ar, status, start_date, end_date, budget_minor)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.ClientID, p.Name, p.NameAr, string(p.Status), dateArg(p.StartDate), dateArg(p.EndDate), budget); err != nil {
			return err
		}
	}
	for _, i := range s.Invoices {
		if err := exec("invoice "+i.ID, `INSERT OR REPLACE INTO invoices
			(id, invoice_number, client_id, project_id, status, issue_date, due_date,
			 subtotal_minor, tax_rate, tax_amount_minor, total_minor, currency, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i.ID, i.InvoiceNumber, i.ClientID, i.ProjectID, string(i.Status), dateArg(i.IssueDate), dateArg(i.DueDate),
			core.ToMinor(i.Subtotal), i.TaxRate.String(), core.ToMinor(i.TaxAmount), core.ToMinor(i.Total), currency(i.Currency), i.Notes); err != nil {
			return err
		}
	}
	for _, it := range s.InvoiceItems {
		if err := exec("invoice item "+it.ID, `INSERT OR REPLACE INTO invoice_items
			(id, invoice_id, description, description_ar, quantity, unit_price_minor, total_minor, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			it.ID, it.InvoiceID, it.Description, it.DescriptionAr, it.Quantity.String(), core.ToMinor(it.UnitPrice), core.ToMinor(it.Total), it.SortOrder); err != nil {
			return err
		}
	}
	for _, p := range s.Payments {
		if err := exec("payment "+p.ID, `INSERT OR REPLACE INTO payments
			(id, invoice_id, amount_minor, payment_date, payment_method, reference_number, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.InvoiceID, core.ToMinor(p.Amount), dateArg(p.PaymentDate), string(p.PaymentMethod), p.ReferenceNumber, p.Notes); err != nil {
			return err
		}
	}
	for _, qt := range s.Quotes {
		if err := exec("quote "+qt.ID, `INSERT OR REPLACE INTO quotes
			(id, quote_number, client_id, project_id, status, issue_date, expiry_date,
			 subtotal_minor, tax_rate, tax_amount_minor, total_minor, currency, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			qt.ID, qt.QuoteNumber, qt.ClientID, qt.ProjectID, string(qt.Status), dateArg(qt.IssueDate), dateArg(qt.ExpiryDate),
			core.ToMinor(qt.Subtotal), qt.TaxRate.String(), core.ToMinor(qt.TaxAmount), core.ToMinor(qt.Total), currency(qt.Currency), qt.Notes); err != nil {
			return err
		}
	}
	for _, qi := range s.QuoteItems {
		if err := exec("quote item "+qi.ID, `INSERT OR REPLACE INTO quote_items
			(id, quote_id, description, description_ar, quantity, unit_price_minor, total_minor, sort_order)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			qi.ID, qi.QuoteID, qi.Description, qi.DescriptionAr, qi.Quantity.String(), core.ToMinor(qi.UnitPrice), core.ToMinor(qi.Total), qi.SortOrder); err != nil {
			return err
		}
	}
	for _, c := range s.Cards {
		if err := exec("card "+c.ID, `INSERT OR REPLACE INTO cards
			(id, card_name, card_type, last_four, bank_name, cardholder_name, expiry_date,
			 credit_limit_minor, current_balance_minor, currency, is_active, color)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.CardName, string(c.CardType), c.LastFour, c.BankName, c.CardholderName, c.ExpiryDate,
			core.ToMinor(c.CreditLimit), core.ToMinor(c.CurrentBalance), currency(c.Currency), boolArg(c.IsActive), c.Color); err != nil {
			return err
		}
	}
	for _, c := range s.ExpenseCategories {
		if err := exec("category "+c.ID, `INSERT OR REPLACE INTO expense_categories
			(id, name, name_ar, icon, color, parent_id) VALUES (?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.NameAr, c.Icon, c.Color, c.ParentID); err != nil {
			return err
		}
	}
	for _, e := range s.Expenses {
		tags, err := tagsArg(e.Tags)
		if err != nil {
			return fmt.Errorf("expense %s tags: %w", e.ID, err)
		}
		if err := exec("expense "+e.ID, `INSERT OR REPLACE INTO expenses
			(id, category_id, card_id, amount_minor, currency, description, description_ar,
			 expense_date, vendor, receipt_url, is_recurring, tags)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.CategoryID, e.CardID, core.ToMinor(e.Amount), currency(e.Currency), e.Description, e.DescriptionAr,
			dateArg(e.ExpenseDate), e.Vendor, e.ReceiptURL, boolArg(e.IsRecurring), tags); err != nil {
			return err
		}
	}
	for _, sub := range s.Subscriptions {
		if err := exec("subscription "+sub.ID, `INSERT OR REPLACE INTO subscriptions
			(id, name, name_ar, provider, amount_minor, currency, billing_cycle, next_billing_date,
			 card_id, category_id, status, auto_renew, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sub.ID, sub.Name, sub.NameAr, sub.Provider, core.ToMinor(sub.Amount), currency(sub.Currency), string(sub.BillingCycle),
			dateArg(sub.NextBillingDate), sub.CardID, sub.CategoryID, string(sub.Status), boolArg(sub.AutoRenew), sub.Notes); err != nil {
			return err
		}
	}
	for _, c := range s.Contracts {
		if err := exec("contract "+c.ID, `INSERT OR REPLACE INTO contracts
			(id, client_id, project_id, contract_number, title, title_ar, description, status,
			 start_date, end_date, total_value_minor, currency, payment_terms, document_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.ClientID, c.ProjectID, c.ContractNumber, c.Title, c.TitleAr, c.Description, string(c.Status),
			dateArg(c.StartDate), dateArg(c.EndDate), core.ToMinor(c.TotalValue), currency(c.Currency), c.PaymentTerms, c.DocumentURL); err != nil {
			return err
		}
	}
	return nil
}

func currency(c string) string {
	if c == "" {
		return core.DefaultCurrency
	}
	return c
}

// loadRecords reads the selected tables, each ordered by id.
func loadRecords(ctx context.Context, q DBTX, f ports.Filter) (*core.Snapshot, error) {
	s := &core.Snapshot{}
	loaders := []struct {
		kind core.EntityKind
		load func() error
	}{
		{core.KindClients, func() (err error) { s.Clients, err = loadClients(ctx, q); return }},
		{core.KindProjects, func() (err error) { s.Projects, err = loadProjects(ctx, q); return }},
		{core.KindInvoices, func() (err error) { s.Invoices, err = loadInvoices(ctx, q); return }},
		{core.KindInvoiceItems, func() (err error) { s.InvoiceItems, err = loadInvoiceItems(ctx, q); return }},
		{core.KindPayments, func() (err error) { s.Payments, err = loadPayments(ctx, q); return }},
		{core.KindQuotes, func() (err error) { s.Quotes, err = loadQuotes(ctx, q); return }},
		{core.KindQuoteItems, func() (err error) { s.QuoteItems, err = loadQuoteItems(ctx, q); return }},
		{core.KindCards, func() (err error) { s.Cards, err = loadCards(ctx, q); return }},
		{core.KindExpenseCategories, func() (err error) { s.ExpenseCategories, err = loadCategories(ctx, q); return }},
		{core.KindExpenses, func() (err error) { s.Expenses, err = loadExpenses(ctx, q); return }},
		{core.KindSubscriptions, func() (err error) { s.Subscriptions, err = loadSubscriptions(ctx, q); return }},
		{core.KindContracts, func() (err error) { s.Contracts, err = loadContracts(ctx, q); return }},
	}
	for _, l := range loaders {
		if !f.Includes(l.kind) {
			continue
		}
		if err := l.load(); err != nil {
			return nil, fmt.Errorf("load %s: %w", l.kind, err)
		}
	}
	return s, nil
}

func query(ctx context.Context, q DBTX, stmt string, fn func(rowScanner) error, args ...any) error {
	rows, err := q.QueryContext(ctx, stmt, args...)
	if err != nil {
		return err
	}
	return scanEach(rows, fn)
}

func loadClients(ctx context.Context, q DBTX) ([]core.Client, error) {
	out := []core.Client{}
	err := query(ctx, q, `SELECT id, name, name_ar, email, phone, company, company_ar, address, tax_number, notes, is_active
		FROM clients ORDER BY id`, func(r rowScanner) error {
		var c core.Client
		if err := r.Scan(&c.ID, &c.Name, &c.NameAr, &c.Email, &c.Phone, &c.Company, &c.CompanyAr,
			&c.Address, &c.TaxNumber, &c.Notes, &c.IsActive); err != nil {
			return err
		}
		out = append(out, c)
		return nil
	})
	return out, err
}

func loadProjects(ctx context.Context, q DBTX) ([]core.Project, error) {
	out := []core.Project{}
	err := query(ctx, q, `SELECT id, client_id, name, name_ar, status, start_date, end_date, budget_minor
		FROM projects ORDER BY id`, func(r rowScanner) error {
		var (
			p          core.Project
			start, end sql.NullString
			budget     sql.NullInt64
			err        error
		)
		if err := r.Scan(&p.ID, &p.ClientID, &p.Name, &p.NameAr, &p.Status, &start, &end, &budget); err != nil {
			return err
		}
		if p.StartDate, err = parseDate(start); err != nil {
			return err
		}
		if p.EndDate, err = parseDate(end); err != nil {
			return err
		}
		if budget.Valid {
			b := core.FromMinor(budget.Int64)
			p.Budget = &b
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

func loadInvoices(ctx context.Context, q DBTX) ([]core.Invoice, error) {
	out := []core.Invoice{}
	err := query(ctx, q, `SELECT id, invoice_number, client_id, project_id, status, issue_date, due_date,
		subtotal_minor, tax_rate, tax_amount_minor, total_minor, currency, notes
		FROM invoices ORDER BY id`, func(r rowScanner) error {
		var (
			i                    core.Invoice
			issue, due           sql.NullString
			subtotal, tax, total int64
			rate                 string
			err                  error
		)
		if err := r.Scan(&i.ID, &i.InvoiceNumber, &i.ClientID, &i.ProjectID, &i.Status, &issue, &due,
			&subtotal, &rate, &tax, &total, &i.Currency, &i.Notes); err != nil {
			return err
		}
		if i.IssueDate, err = parseDate(issue); err != nil {
			return err
		}
		if i.DueDate, err = parseDate(due); err != nil {
			return err
		}
		if i.TaxRate, err = parseDecimal(rate); err != nil {
			return err
		}
		i.Subtotal, i.TaxAmount, i.Total = core.FromMinor(subtotal), core.FromMinor(tax), core.FromMinor(total)
		out = append(out, i)
		return nil
	})
	return out, err
}

func loadInvoiceItems(ctx context.Context, q DBTX) ([]core.InvoiceItem, error) {
	out := []core.InvoiceItem{}
	err := query(ctx, q, `SELECT id, invoice_id, description, description_ar, quantity, unit_price_minor, total_minor, sort_order
		FROM invoice_items ORDER BY invoice_id, sort_order, id`, func(r rowScanner) error {
		var (
			it           core.InvoiceItem
			qty          string
			price, total int64
			err          error
		)
		if err := r.Scan(&it.ID, &it.InvoiceID, &it.Description, &it.DescriptionAr, &qty, &price, &total, &it.SortOrder); err != nil {
			return err
		}
		if it.Quantity, err = parseDecimal(qty); err != nil {
			return err
		}
		it.UnitPrice, it.Total = core.FromMinor(price), core.FromMinor(total)
		out = append(out, it)
		return nil
	})
	return out, err
}

func loadPayments(ctx context.Context, q DBTX) ([]core.Payment, error) {
	out := []core.Payment{}
	err := query(ctx, q, `SELECT id, invoice_id, amount_minor, payment_date, payment_method, reference_number, notes
		FROM payments ORDER BY id`, func(r rowScanner) error {
		var (
			p      core.Payment
			amount int64
			on     sql.NullString
			err    error
		)
		if err := r.Scan(&p.ID, &p.InvoiceID, &amount, &on, &p.PaymentMethod, &p.ReferenceNumber, &p.Notes); err != nil {
			return err
		}
		if p.PaymentDate, err = parseDate(on); err != nil {
			return err
		}
		p.Amount = core.FromMinor(amount)
		out = append(out, p)
		return nil
	})
	return out, err
}

func loadQuotes(ctx context.Context, q DBTX) ([]core.Quote, error) {
	out := []core.Quote{}
	err := query(ctx, q, `SELECT id, quote_number, client_id, project_id, status, issue_date, expiry_date,
		subtotal_minor, tax_rate, tax_amount_minor, total_minor, currency, notes
		FROM quotes ORDER BY id`, func(r rowScanner) error {
		var (
			qt                   core.Quote
			issue, expiry        sql.NullString
			subtotal, tax, total int64
			rate                 string
			err                  error
		)
		if err := r.Scan(&qt.ID, &qt.QuoteNumber, &qt.ClientID, &qt.ProjectID, &qt.Status, &issue, &expiry,
			&subtotal, &rate, &tax, &total, &qt.Currency, &qt.Notes); err != nil {
			return err
		}
		if qt.IssueDate, err = parseDate(issue); err != nil {
			return err
		}
		if qt.ExpiryDate, err = parseDate(expiry); err != nil {
			return err
		}
		if qt.TaxRate, err = parseDecimal(rate); err != nil {
			return err
		}
		qt.Subtotal, qt.TaxAmount, qt.Total = core.FromMinor(subtotal), core.FromMinor(tax), core.FromMinor(total)
		out = append(out, qt)
		return nil
	})
	return out, err
}

func loadQuoteItems(ctx context.Context, q DBTX) ([]core.QuoteItem, error) {
	out := []core.QuoteItem{}
	err := query(ctx, q, `SELECT id, quote_id, description, description_ar, quantity, unit_price_minor, total_minor, sort_order
		FROM quote_items ORDER BY quote_id, sort_order, id`, func(r rowScanner) error {
		var (
			qi           core.QuoteItem
			qty          string
			price, total int64
			err          error
		)
		if err := r.Scan(&qi.ID, &qi.QuoteID, &qi.Description, &qi.DescriptionAr, &qty, &price, &total, &qi.SortOrder); err != nil {
			return err
		}
		if qi.Quantity, err = parseDecimal(qty); err != nil {
			return err
		}
		qi.UnitPrice, qi.Total = core.FromMinor(price), core.FromMinor(total)
		out = append(out, qi)
		return nil
	})
	return out, err
}

func loadCards(ctx context.Context, q DBTX) ([]core.Card, error) {
	out := []core.Card{}
	err := query(ctx, q, `SELECT id, card_name, card_type, last_four, bank_name, cardholder_name, expiry_date,
		credit_limit_minor, current_balance_minor, currency, is_active, color
		FROM cards ORDER BY id`, func(r rowScanner) error {
		var (
			c              core.Card
			limit, balance int64
		)
		if err := r.Scan(&c.ID, &c.CardName, &c.CardType, &c.LastFour, &c.BankName, &c.CardholderName, &c.ExpiryDate,
			&limit, &balance, &c.Currency, &c.IsActive, &c.Color); err != nil {
			return err
		}
		c.CreditLimit, c.CurrentBalance = core.FromMinor(limit), core.FromMinor(balance)
		out = append(out, c)
		return nil
	})
	return out, err
}

func loadCategories(ctx context.Context, q DBTX) ([]core.ExpenseCategory, error) {
	out := []core.ExpenseCategory{}
	err := query(ctx, q, `SELECT id, name, name_ar, icon, color, parent_id FROM expense_categories ORDER BY id`,
		func(r rowScanner) error {
			var c core.ExpenseCategory
			if err := r.Scan(&c.ID, &c.Name, &c.NameAr, &c.Icon, &c.Color, &c.ParentID); err != nil {
				return err
			}
			out = append(out, c)
			return nil
		})
	return out, err
}

func loadExpenses(ctx context.Context, q DBTX) ([]core.Expense, error) {
	out := []core.Expense{}
	err := query(ctx, q, `SELECT id, category_id, card_id, amount_minor, currency, description, description_ar,
		expense_date, vendor, receipt_url, is_recurring, tags
		FROM expenses ORDER BY id`, func(r rowScanner) error {
		var (
			e      core.Expense
			amount int64
			on     sql.NullString
			tags   string
			err    error
		)
		if err := r.Scan(&e.ID, &e.CategoryID, &e.CardID, &amount, &e.Currency, &e.Description, &e.DescriptionAr,
			&on, &e.Vendor, &e.ReceiptURL, &e.IsRecurring, &tags); err != nil {
			return err
		}
		if e.ExpenseDate, err = parseDate(on); err != nil {
			return err
		}
		if e.Tags, err = parseTags(tags); err != nil {
			return err
		}
		e.Amount = core.FromMinor(amount)
		out = append(out, e)
		return nil
	})
	return out, err
}

func loadSubscriptions(ctx context.Context, q DBTX) ([]core.Subscription, error) {
	out := []core.Subscription{}
	err := query(ctx, q, `SELECT id, name, name_ar, provider, amount_minor, currency, billing_cycle, next_billing_date,
		card_id, category_id, status, auto_renew, notes
		FROM subscriptions ORDER BY id`, func(r rowScanner) error {
		var (
			sub    core.Subscription
			amount int64
			next   sql.NullString
			err    error
		)
		if err := r.Scan(&sub.ID, &sub.Name, &sub.NameAr, &sub.Provider, &amount, &sub.Currency, &sub.BillingCycle, &next,
			&sub.CardID, &sub.CategoryID, &sub.Status, &sub.AutoRenew, &sub.Notes); err != nil {
			return err
		}
		if sub.NextBillingDate, err = parseDate(next); err != nil {
			return err
		}
		sub.Amount = core.FromMinor(amount)
		out = append(out, sub)
		return nil
	})
	return out, err
}

func loadContracts(ctx context.Context, q DBTX) ([]core.Contract, error) {
	out := []core.Contract{}
	err := query(ctx, q, `SELECT id, client_id, project_id, contract_number, title, title_ar, description, status,
		start_date, end_date, total_value_minor, currency, payment_terms, document_url
		FROM contracts ORDER BY id`, func(r rowScanner) error {
		var (
			c          core.Contract
			start, end sql.NullString
			value      int64
			err        error
		)
		if err := r.Scan(&c.ID, &c.ClientID, &c.ProjectID, &c.ContractNumber, &c.Title, &c.TitleAr, &c.Description, &c.Status,
			&start, &end, &value, &c.Currency, &c.PaymentTerms, &c.DocumentURL); err != nil {
			return err
		}
		if c.StartDate, err = parseDate(start); err != nil {
			return err
		}
		if c.EndDate, err = parseDate(end); err != nil {
			return err
		}
		c.TotalValue = core.FromMinor(value)
		out = append(out, c)
		return nil
	})
	return out, err
}
