package cli

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/iudanet/deltasync/internal/catalog"
	"github.com/iudanet/deltasync/internal/client/storage"
	"github.com/iudanet/deltasync/internal/models"
)

// Put создает или изменяет запись из аргументов column=value
func (c *Cli) Put(ctx context.Context, table, id string, assignments []string) error {
	values, err := ParseAssignments(assignments)
	if err != nil {
		return err
	}

	id, err = c.records.Put(ctx, table, id, values)
	if err != nil {
		return err
	}

	c.io.Printf("✓ Saved %s/%s (pending sync)\n", table, id)
	return nil
}

// Delete помечает запись удаленной
func (c *Cli) Delete(ctx context.Context, table, id string) error {
	if err := c.records.Delete(ctx, table, id); err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return fmt.Errorf("record %s/%s not found", table, id)
		}
		return err
	}

	c.io.Printf("✓ Deleted %s/%s (pending sync)\n", table, id)
	return nil
}

// Get печатает одну запись
func (c *Cli) Get(ctx context.Context, table, id string) error {
	rec, err := c.records.Get(ctx, table, id)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			return fmt.Errorf("record %s/%s not found", table, id)
		}
		return err
	}

	c.io.Printf("=== %s/%s ===\n", table, id)
	c.io.Printf("status: %s\n", rec.Status)
	for _, key := range slices.Sorted(maps.Keys(rec.Record)) {
		if key == models.ColumnID {
			continue
		}
		c.io.Printf("%s: %s\n", key, formatValue(rec.Record[key]))
	}

	return nil
}

// List печатает живые записи таблицы
func (c *Cli) List(ctx context.Context, table string) error {
	list, err := c.records.List(ctx, table)
	if err != nil {
		return err
	}

	c.io.Printf("=== %s ===\n", table)
	if len(list) == 0 {
		c.io.Println("No records found.")
		return nil
	}

	columns := []string{models.ColumnID}
	for _, t := range catalog.Tables() {
		if t.Name == table {
			columns = append(columns, t.ColumnNames()...)
		}
	}

	tw := tabwriter.NewWriter(c.io, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(append(columns, "status"), "\t")))
	for _, rec := range list {
		row := make([]string, 0, len(columns)+1)
		for _, col := range columns {
			row = append(row, formatValue(rec.Record[col]))
		}
		row = append(row, string(rec.Status))
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	c.io.Printf("\nTotal: %d\n", len(list))
	return nil
}
