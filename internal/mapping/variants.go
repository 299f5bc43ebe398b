package mapping

import (
	"gst-reconciliation-service/internal/models"
)

// registry holds the ten predefined reconciliation variants. Adding a
// variant means adding one entry here (plus its fallback selection); the
// matcher and differ are untouched.
var registry = map[Variant]*Mapping{
	VariantGSTR1Books:     gstr1Books,
	VariantGSTR2Books:     gstr2Books,
	VariantGSTR3BGSTR1:    gstr3bGSTR1,
	VariantGSTR3BBooks:    gstr3bBooks,
	VariantITCGSTR3B2B:    itcGSTR3B2B,
	VariantITCEligibility: itcEligibility,
	VariantGSTR1EWay:      gstr1EWay,
	VariantGSTR2EWay:      gstr2EWay,
	VariantGSTR1EInvoice:  gstr1EInvoice,
	VariantTurnover:       turnover,
}

func one(col string) []string { return []string{col} }

// gstr1Books reconciles the GSTR-1 outward-supply return against the
// sales register. Invoice-level matching on number, date and recipient
// GSTIN; clean identifiers, so exact keys only.
var gstr1Books = &Mapping{
	Variant:     VariantGSTR1Books,
	SourceAName: "GSTR-1",
	SourceBName: "Sales Register",
	Granularity: GranularityRow,
	DateField:   "Invoice Date",
	Fields: []Field{
		{Name: "GSTIN/UIN of Recipient", SourceB: one("Customer GSTIN"), Role: RoleKey, Kind: models.KindText},
		{Name: "Invoice Number", SourceB: one("Invoice No."), Role: RoleKey, Kind: models.KindText},
		{Name: "Invoice Date", SourceB: one("Invoice Date"), Role: RoleKey, Kind: models.KindDate},
		{Name: "Invoice Value", SourceB: one("Invoice Value"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Taxable Value", SourceB: one("Taxable Value"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Integrated Tax", SourceB: one("IGST"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Central Tax", SourceB: one("CGST"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "State/UT Tax", SourceB: one("SGST/UTGST"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Cess", SourceB: one("Cess"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Receiver Name", SourceB: one("Customer Name"), Role: RoleInfo, Kind: models.KindText},
		{Name: "Place of Supply", SourceB: one("State/Code"), Role: RoleInfo, Kind: models.KindText},
		{Name: "Reverse Charge", SourceB: one("RCM Applicable"), Role: RoleInfo, Kind: models.KindText},
		{Name: "Applicable % of Tax Rate", SourceB: one("Tax Rate"), Role: RoleInfo, Kind: models.KindNumeric},
		{Name: "Rate", SourceB: one("Rate"), Role: RoleInfo, Kind: models.KindNumeric},
		{Name: "E-Commerce GSTIN", SourceB: one("E-Commerce GSTIN"), Role: RoleInfo, Kind: models.KindText},
		{Name: "Supply Type", SourceB: one("Supply Type"), Role: RoleInfo, Kind: models.KindText},
	},
}

// gstr2Books reconciles GSTR-2A/2B inward supplies against the purchase
// register.
var gstr2Books = &Mapping{
	Variant:     VariantGSTR2Books,
	SourceAName: "GSTR-2A/2B",
	SourceBName: "Purchase Register",
	Granularity: GranularityRow,
	DateField:   "Invoice Date",
	Fields: []Field{
		{Name: "GSTIN of Supplier", SourceB: one("Vendor GSTIN"), Role: RoleKey, Kind: models.KindText},
		{Name: "Invoice Number", SourceB: one("Purchase Invoice No."), Role: RoleKey, Kind: models.KindText},
		{Name: "Invoice Date", SourceB: one("Invoice Date"), Role: RoleKey, Kind: models.KindDate},
		{Name: "Invoice Value", SourceB: one("Invoice Value"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Taxable Value", SourceB: one("Taxable Value"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Integrated Tax", SourceB: one("IGST"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Central Tax", SourceB: one("CGST"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "State/UT Tax", SourceB: one("SGST/UTGST"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Cess", SourceB: one("Cess"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Trade/Legal Name", SourceB: one("Vendor Name"), Role: RoleInfo, Kind: models.KindText},
		{Name: "Place of Supply", SourceB: one("State/Code"), Role: RoleInfo, Kind: models.KindText},
		{Name: "Reverse Charge", SourceB: one("RCM Applicable"), Role: RoleInfo, Kind: models.KindText},
		{Name: "Invoice Type", SourceB: one("Invoice Type"), Role: RoleInfo, Kind: models.KindText},
		{Name: "Rate", SourceB: one("Rate"), Role: RoleInfo, Kind: models.KindNumeric},
		{Name: "ITC Availability", SourceB: one("ITC Eligible"), Role: RoleInfo, Kind: models.KindText},
		{Name: "Reason", SourceB: one("Ineligibility Reason"), Role: RoleInfo, Kind: models.KindText},
	},
}

// gstr3bGSTR1 cross-checks the GSTR-3B summary tables against the
// corresponding GSTR-1 section totals. Summary-table granularity: each
// 3B table maps onto the sum of one or more GSTR-1 tables. Tables
// 3.1(d)/(e) have no GSTR-1 counterpart and are reported, not compared.
var gstr3bGSTR1 = &Mapping{
	Variant:     VariantGSTR3BGSTR1,
	SourceAName: "GSTR-3B",
	SourceBName: "GSTR-1",
	Granularity: GranularityAggregate,
	Fields: []Field{
		{Name: "Table 3.1(a)", SourceB: []string{"Table 4", "Table 5", "Table 6", "Table 7", "Table 8", "Table 9", "Table 10", "Table 11", "Table 12"}, Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 3.1(b)", SourceB: one("Table 6: Zero rated supplies"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 3.1(c)", SourceB: one("Nil rated, exempted supplies"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 3.1(d)", Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 3.1(e)", Role: RoleValue, Kind: models.KindNumeric},
	},
}

// gstr3bBooks cross-checks GSTR-3B output tax against the output tax
// ledger in the books.
var gstr3bBooks = &Mapping{
	Variant:     VariantGSTR3BBooks,
	SourceAName: "GSTR-3B",
	SourceBName: "Books",
	Granularity: GranularityAggregate,
	Fields: []Field{
		{Name: "Table 3.1", SourceB: one("Output Tax Ledger"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 3.1(a)", SourceB: one("Regular Supplies Output Tax"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 3.1(b)", SourceB: one("Zero-Rated Supplies"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 3.1(c)", SourceB: one("Exempt Supplies"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 3.1(d)", SourceB: one("RCM Output Tax"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 3.1(e)", SourceB: one("Non-GST Supplies"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Integrated Tax Amount", SourceB: one("IGST Output"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Central Tax Amount", SourceB: one("CGST Output"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "State/UT Tax Amount", SourceB: one("SGST/UTGST Output"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Cess Amount", SourceB: one("Cess Output"), Role: RoleValue, Kind: models.KindNumeric},
	},
}

// itcGSTR3B2B cross-checks input tax credit claimed in GSTR-3B table 4
// against GSTR-2B availability. Several 3B rows have no 2B counterpart;
// claimed amounts with no counterpart are surfaced separately.
var itcGSTR3B2B = &Mapping{
	Variant:     VariantITCGSTR3B2B,
	SourceAName: "GSTR-3B",
	SourceBName: "GSTR-2B",
	Granularity: GranularityAggregate,
	Fields: []Field{
		{Name: "Table 4(A)(1)", Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 4(A)(2)", Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 4(A)(3)", SourceB: one("ITC Available - Reverse Charge"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 4(A)(4)", SourceB: one("ITC From ISD"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 4(A)(5)", SourceB: one("ITC Available"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 4(B)(1)", Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 4(B)(2)", Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 4(C)", SourceB: one("Net ITC Available"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Table 4(D)", SourceB: one("Ineligible ITC"), Role: RoleValue, Kind: models.KindNumeric},
	},
}

// itcEligibility cross-checks ITC recorded in the books against the
// eligible amounts under sections 16 and 17.
var itcEligibility = &Mapping{
	Variant:     VariantITCEligibility,
	SourceAName: "Books ITC",
	SourceBName: "Eligible ITC",
	Granularity: GranularityAggregate,
	Fields: []Field{
		{Name: "Total ITC", SourceB: one("Gross ITC"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Eligible ITC", SourceB: one("Eligible ITC as per Sec 16"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Ineligible ITC", SourceB: one("Ineligible ITC as per Sec 17"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "ITC Reversed", SourceB: one("ITC Reversal"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Net ITC", SourceB: one("Net Eligible ITC"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "ITC on Capital Goods", SourceB: one("ITC - Capital Goods"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "ITC on Input Services", SourceB: one("ITC - Input Services"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "ITC on Inputs", SourceB: one("ITC - Inputs"), Role: RoleValue, Kind: models.KindNumeric},
	},
}

// gstr1EWay cross-checks GSTR-1 invoices against e-way bills. Transport
// documents carry inconsistently prefixed document numbers, so the full
// fallback cascade is enabled.
var gstr1EWay = &Mapping{
	Variant:           VariantGSTR1EWay,
	SourceAName:       "GSTR-1",
	SourceBName:       "E-Way Bills",
	Granularity:       GranularityRow,
	DateField:         "Invoice Date",
	CounterpartyField: "GSTIN/UIN of Recipient",
	AmountField:       "Invoice Value",
	Fallbacks:         FallbackSet{NormalizedText: true, NumericOnly: true, AmountSimilarity: true},
	Fields: []Field{
		{Name: "Invoice Number", SourceB: one("Document No."), Role: RoleKey, Kind: models.KindText},
		{Name: "Invoice Date", SourceB: one("Document Date"), Role: RoleKey, Kind: models.KindDate},
		{Name: "GSTIN/UIN of Recipient", SourceB: one("Recipient GSTIN"), Role: RoleKey, Kind: models.KindText},
		{Name: "Invoice Value", SourceB: one("Total Invoice Value"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Taxable Value", SourceB: one("Taxable Amount"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Tax Rate", SourceB: one("Tax Rate"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "HSN Code", SourceB: one("HSN Code"), Role: RoleAttribute, Kind: models.KindText},
		{Name: "E-Way Bill Number", SourceB: one("E-Way Bill No."), Role: RoleAttribute, Kind: models.KindText},
		{Name: "Receiver Name", SourceB: one("Recipient Name"), Role: RoleInfo, Kind: models.KindText},
		{Name: "Place of Supply", SourceB: one("Place of Delivery"), Role: RoleInfo, Kind: models.KindText},
		{Name: "E-Way Bill Date", SourceB: one("E-Way Bill Date"), Role: RoleInfo, Kind: models.KindDate},
	},
}

// gstr2EWay cross-checks GSTR-2A/2B inward supplies against e-way bills.
var gstr2EWay = &Mapping{
	Variant:           VariantGSTR2EWay,
	SourceAName:       "GSTR-2A/2B",
	SourceBName:       "E-Way Bills",
	Granularity:       GranularityRow,
	DateField:         "Invoice Date",
	CounterpartyField: "GSTIN of Supplier",
	AmountField:       "Invoice Value",
	Fallbacks:         FallbackSet{NormalizedText: true, NumericOnly: true, AmountSimilarity: true},
	Fields: []Field{
		{Name: "GSTIN of Supplier", SourceB: one("Supplier GSTIN"), Role: RoleKey, Kind: models.KindText},
		{Name: "Invoice Number", SourceB: one("Document No."), Role: RoleKey, Kind: models.KindText},
		{Name: "Invoice Date", SourceB: one("Document Date"), Role: RoleKey, Kind: models.KindDate},
		{Name: "Invoice Value", SourceB: one("Total Invoice Value"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Taxable Value", SourceB: one("Taxable Amount"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Tax Rate", SourceB: one("Tax Rate"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "HSN Code", SourceB: one("HSN Code"), Role: RoleAttribute, Kind: models.KindText},
		{Name: "E-Way Bill Number", SourceB: one("E-Way Bill No."), Role: RoleAttribute, Kind: models.KindText},
		{Name: "Trade/Legal Name", SourceB: one("Supplier Name"), Role: RoleInfo, Kind: models.KindText},
		{Name: "Place of Supply", SourceB: one("Place of Delivery"), Role: RoleInfo, Kind: models.KindText},
		{Name: "E-Way Bill Date", SourceB: one("E-Way Bill Date"), Role: RoleInfo, Kind: models.KindDate},
	},
}

// gstr1EInvoice cross-checks GSTR-1 invoices against the e-invoice (IRN)
// registry. E-invoice document numbers share the messy-prefix problem
// with e-way bills.
var gstr1EInvoice = &Mapping{
	Variant:           VariantGSTR1EInvoice,
	SourceAName:       "GSTR-1",
	SourceBName:       "E-Invoice",
	Granularity:       GranularityRow,
	DateField:         "Invoice Date",
	CounterpartyField: "GSTIN/UIN of Recipient",
	AmountField:       "Invoice Value",
	Fallbacks:         FallbackSet{NormalizedText: true, NumericOnly: true, AmountSimilarity: true},
	Fields: []Field{
		{Name: "Invoice Number", SourceB: one("Document No."), Role: RoleKey, Kind: models.KindText},
		{Name: "Invoice Date", SourceB: one("Document Date"), Role: RoleKey, Kind: models.KindDate},
		{Name: "GSTIN/UIN of Recipient", SourceB: one("Recipient GSTIN"), Role: RoleKey, Kind: models.KindText},
		{Name: "Invoice Value", SourceB: one("Total Invoice Value"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Taxable Value", SourceB: one("Taxable Value"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Integrated Tax", SourceB: one("IGST Amount"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Central Tax", SourceB: one("CGST Amount"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "State/UT Tax", SourceB: one("SGST/UTGST Amount"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Tax Rate", SourceB: one("Rate"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "HSN Code", SourceB: one("HSN Code"), Role: RoleAttribute, Kind: models.KindText},
		{Name: "IRN Number", SourceB: one("IRN"), Role: RoleAttribute, Kind: models.KindText},
		{Name: "Acknowledgement Number", SourceB: one("Ack No."), Role: RoleAttribute, Kind: models.KindText},
		{Name: "Receiver Name", SourceB: one("Recipient Legal Name"), Role: RoleInfo, Kind: models.KindText},
		{Name: "Place of Supply", SourceB: one("Place of Supply"), Role: RoleInfo, Kind: models.KindText},
		{Name: "IRN Date", SourceB: one("IRN Date"), Role: RoleInfo, Kind: models.KindDate},
		{Name: "Acknowledgement Date", SourceB: one("Ack Date"), Role: RoleInfo, Kind: models.KindDate},
	},
}

// turnover reconciles turnover across books, GST returns, and the
// financial statements. Three sources, compared pairwise per component.
// "Other Income" exists only in the financial statements.
var turnover = &Mapping{
	Variant:     VariantTurnover,
	SourceAName: "Books",
	SourceBName: "GST Returns",
	SourceCName: "Financial Statements",
	Granularity: GranularityThreeSource,
	Fields: []Field{
		{Name: "Total Sales", SourceB: one("Annual Aggregate Turnover"), SourceC: one("Revenue from Operations"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Taxable Turnover", SourceB: one("Taxable Turnover"), SourceC: one("Taxable Revenue"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Exempt Turnover", SourceB: one("Exempt Turnover"), SourceC: one("Exempt Revenue"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Export Turnover", SourceB: one("Zero-rated Turnover"), SourceC: one("Export Revenue"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Non-GST Turnover", SourceB: one("Non-GST Turnover"), SourceC: one("Non-GST Revenue"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Sales Returns", SourceB: one("Credit Notes"), SourceC: one("Sales Returns/Adjustments"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Advances Received", SourceB: one("Advances for which GST is paid"), SourceC: one("Advances from Customers"), Role: RoleValue, Kind: models.KindNumeric},
		{Name: "Other Income", SourceC: one("Other Income"), Role: RoleValue, Kind: models.KindNumeric},
	},
}
