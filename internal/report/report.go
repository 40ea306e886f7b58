// Package report writes the detected address records as a CSV or XLSX table.
package report

import (
	"strconv"

	"github.com/sells-group/address-mapper/internal/mapper"
	"github.com/sells-group/address-mapper/internal/model"
)

// geocodeFirstColumns mirror the record shape of the geocode_first policy,
// where every row carries coordinates.
var geocodeFirstColumns = []string{
	"address",
	"latitude",
	"longitude",
	"document_title",
	"page",
	"annotation_id",
}

// annotateFirstColumns lead with the annotation, since coordinates may be absent.
var annotateFirstColumns = []string{
	"document",
	"page",
	"url",
	"address",
	"latitude",
	"longitude",
}

// Columns returns the header for a policy.
func Columns(policy mapper.Policy) []string {
	if policy == mapper.PolicyAnnotateFirst {
		return append([]string(nil), annotateFirstColumns...)
	}
	return append([]string(nil), geocodeFirstColumns...)
}

// cell is one table value; num is set for numeric columns with a value.
type cell struct {
	text string
	num  *float64
}

func textCell(s string) cell { return cell{text: s} }

func floatCell(v *float64) cell {
	if v == nil {
		return cell{}
	}
	return cell{text: strconv.FormatFloat(*v, 'f', -1, 64), num: v}
}

func intCell(n int) cell {
	f := float64(n)
	return cell{text: strconv.Itoa(n), num: &f}
}

// buildRow maps a record to the cells of the policy's columns.
func buildRow(policy mapper.Policy, r model.Record) []cell {
	if policy == mapper.PolicyAnnotateFirst {
		return []cell{
			textCell(r.DocumentTitle), // document
			intCell(r.Page),           // page
			textCell(r.AnnotationURL), // url
			textCell(r.Address),       // address
			floatCell(r.Latitude),     // latitude
			floatCell(r.Longitude),    // longitude
		}
	}
	return []cell{
		textCell(r.Address),       // address
		floatCell(r.Latitude),     // latitude
		floatCell(r.Longitude),    // longitude
		textCell(r.DocumentTitle), // document_title
		intCell(r.Page),           // page
		textCell(r.AnnotationID),  // annotation_id
	}
}

func buildTable(policy mapper.Policy, records []model.Record) [][]cell {
	rows := make([][]cell, len(records))
	for i, r := range records {
		rows[i] = buildRow(policy, r)
	}
	return rows
}
