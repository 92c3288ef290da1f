package service

import (
	"concept_review_backend/internal/model"
	"fmt"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
)

const surveySheet = "問卷資料"

// WriteSurveyXLSX 与 CSV 相同的列；文字列保留原始换行
func WriteSurveyXLSX(rows []model.SurveyResponse, loc *time.Location) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", surveySheet); err != nil {
		return nil, err
	}

	header := make([]interface{}, len(surveyColumns))
	for i, col := range surveyColumns {
		header[i] = col.Label
	}
	if err := f.SetSheetRow(surveySheet, "A1", &header); err != nil {
		return nil, err
	}

	for i := range rows {
		values := make([]interface{}, len(surveyColumns))
		for j, col := range surveyColumns {
			v := col.Value(&rows[i], loc)
			values[j] = v
			if col.Numeric {
				if n, err := strconv.Atoi(v); err == nil {
					values[j] = n
				}
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(surveySheet, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetPanes(surveySheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
