// Command generate writes sample source files for manual testing of the
// reconciliation variants: a GSTR-1 extract with a matching sales
// register, and an e-way bill extract with messy document numbers that
// exercises the fallback key cascade.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
)

func main() {
	var (
		outputDir = flag.String("output-dir", "../generated", "output directory for generated files")
		rows      = flag.Int("rows", 50, "number of invoices to generate")
		seed      = flag.Int64("seed", 42, "random seed, for reproducible files")
	)
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		log.Fatalf("creating output dir: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	invoices := generateInvoices(rng, *rows)

	files := map[string]func(string) error{
		"gstr1.csv":          func(p string) error { return writeGSTR1(p, invoices) },
		"sales_register.csv": func(p string) error { return writeSalesRegister(p, rng, invoices) },
		"eway_bills.csv":     func(p string) error { return writeEWayBills(p, invoices) },
	}
	for name, write := range files {
		path := filepath.Join(*outputDir, name)
		if err := write(path); err != nil {
			log.Fatalf("writing %s: %v", name, err)
		}
		fmt.Printf("wrote %s\n", path)
	}
}

type invoice struct {
	gstin   string
	number  string
	date    string
	value   float64
	taxable float64
	igst    float64
}

var stateCodes = []string{"27", "29", "33", "07", "24", "36"}

func generateInvoices(rng *rand.Rand, n int) []invoice {
	out := make([]invoice, 0, n)
	for i := 0; i < n; i++ {
		taxable := float64(rng.Intn(900_000)+10_000) / 10
		igst := taxable * 0.18
		out = append(out, invoice{
			gstin:   randomGSTIN(rng),
			number:  fmt.Sprintf("INV-2024-%05d", i+1),
			date:    fmt.Sprintf("2024-%02d-%02d", rng.Intn(3)+4, rng.Intn(28)+1),
			value:   taxable + igst,
			taxable: taxable,
			igst:    igst,
		})
	}
	return out
}

func randomGSTIN(rng *rand.Rand) string {
	letters := "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	pan := make([]byte, 5)
	for i := range pan {
		pan[i] = letters[rng.Intn(len(letters))]
	}
	return fmt.Sprintf("%s%s%04dF1Z%d",
		stateCodes[rng.Intn(len(stateCodes))], pan, rng.Intn(10000), rng.Intn(10))
}

func writeGSTR1(path string, invoices []invoice) error {
	rows := [][]string{{
		"GSTIN/UIN of Recipient", "Invoice Number", "Invoice Date",
		"Invoice Value", "Taxable Value", "Integrated Tax",
	}}
	for _, inv := range invoices {
		rows = append(rows, []string{
			inv.gstin, inv.number, inv.date,
			fmt.Sprintf("%.2f", inv.value),
			fmt.Sprintf("%.2f", inv.taxable),
			fmt.Sprintf("%.2f", inv.igst),
		})
	}
	return writeCSV(path, rows)
}

// writeSalesRegister perturbs a handful of amounts and drops a few rows
// so reconciling against gstr1.csv produces mismatches and one-sided
// records, not just clean matches.
func writeSalesRegister(path string, rng *rand.Rand, invoices []invoice) error {
	rows := [][]string{{
		"Customer GSTIN", "Invoice No.", "Invoice Date",
		"Invoice Value", "Taxable Value", "IGST",
	}}
	for i, inv := range invoices {
		if i%10 == 9 {
			continue
		}
		value := inv.value
		if i%7 == 3 {
			value += float64(rng.Intn(500) + 50)
		}
		rows = append(rows, []string{
			inv.gstin, inv.number, inv.date,
			fmt.Sprintf("%.2f", value),
			fmt.Sprintf("%.2f", inv.taxable),
			fmt.Sprintf("%.2f", inv.igst),
		})
	}
	return writeCSV(path, rows)
}

// writeEWayBills rewrites document numbers in the styles transporters
// actually use, so only the normalized and numeric-core key passes can
// pair them back up.
func writeEWayBills(path string, invoices []invoice) error {
	rows := [][]string{{
		"Recipient GSTIN", "Document No.", "Document Date",
		"Total Invoice Value", "Taxable Amount",
	}}
	for i, inv := range invoices {
		number := inv.number
		switch i % 3 {
		case 1:
			number = fmt.Sprintf("SI/2024/%05d", i+1)
		case 2:
			number = fmt.Sprintf("DOC%05d", i+1)
		}
		rows = append(rows, []string{
			inv.gstin, number, inv.date,
			fmt.Sprintf("%.2f", inv.value),
			fmt.Sprintf("%.2f", inv.taxable),
		})
	}
	return writeCSV(path, rows)
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}
