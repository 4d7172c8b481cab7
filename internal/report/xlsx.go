// Package report renders stored audits as XLSX workbooks.
package report

import (
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/seomentor/seomentor-api/internal/model"
)

// WritePlanWorkbook writes a two-sheet workbook for a stored audit:
// an Overview sheet with score, issues, keyword gaps and competitors,
// and a Roadmap sheet with one row per plan day.
func WritePlanWorkbook(path string, p *model.Project) error {
	if p == nil {
		return eris.New("report: nil project")
	}

	f := xlsx.NewFile()

	overview, err := f.AddSheet("Overview")
	if err != nil {
		return eris.Wrap(err, "report: add overview sheet")
	}
	writeOverview(overview, p)

	roadmap, err := f.AddSheet("Roadmap")
	if err != nil {
		return eris.Wrap(err, "report: add roadmap sheet")
	}
	writeRoadmap(roadmap, p.Result.Roadmap)

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}

func writeOverview(sheet *xlsx.Sheet, p *model.Project) {
	addRow(sheet, "Website", p.URL)
	addRow(sheet, "Analyzed", p.CreatedAt.Format("2006-01-02 15:04 MST"))
	addRow(sheet, "SEO score", strconv.FormatFloat(p.Result.SEOScore, 'f', -1, 64))
	addRow(sheet)

	addRow(sheet, "Issues")
	for _, issue := range p.Result.Issues {
		addRow(sheet, "", issue)
	}
	addRow(sheet)

	addRow(sheet, "Keyword gaps")
	for _, gap := range p.Result.KeywordGaps {
		addRow(sheet, "", gap)
	}
	addRow(sheet)

	addRow(sheet, "Competitors", "Why they matter", "Website")
	for _, c := range p.Result.Competitors {
		addRow(sheet, c.Name, c.Reason, c.URL)
	}
}

func writeRoadmap(sheet *xlsx.Sheet, roadmap []model.RoadmapTask) {
	addRow(sheet, "Day", "Task")
	for _, task := range roadmap {
		row := sheet.AddRow()
		row.AddCell().SetInt(task.Day)
		row.AddCell().Value = task.Task
	}
}

func addRow(sheet *xlsx.Sheet, values ...string) {
	row := sheet.AddRow()
	for _, v := range values {
		row.AddCell().Value = v
	}
}
