package store

import (
	"encoding/json"
	"fmt"

	"github.com/zaydhassan/AspireOn/internal/model"
)

// insightColumns holds the JSON-encoded list columns of an insight row.
type insightColumns struct {
	salaryRanges      []byte
	topSkills         []byte
	keyTrends         []byte
	recommendedSkills []byte
}

func encodeInsight(in model.IndustryInsight) (insightColumns, error) {
	var (
		cols insightColumns
		err  error
	)
	salary := in.SalaryRanges
	if salary == nil {
		salary = []model.SalaryRange{}
	}
	if cols.salaryRanges, err = json.Marshal(salary); err != nil {
		return cols, fmt.Errorf("salary ranges: %w", err)
	}
	if cols.topSkills, err = json.Marshal(nonNil(in.TopSkills)); err != nil {
		return cols, fmt.Errorf("top skills: %w", err)
	}
	if cols.keyTrends, err = json.Marshal(nonNil(in.KeyTrends)); err != nil {
		return cols, fmt.Errorf("key trends: %w", err)
	}
	if cols.recommendedSkills, err = json.Marshal(nonNil(in.RecommendedSkills)); err != nil {
		return cols, fmt.Errorf("recommended skills: %w", err)
	}
	return cols, nil
}

func decodeInsightColumns(in *model.IndustryInsight, cols insightColumns) error {
	if err := decodeSalaryRanges(cols.salaryRanges, in); err != nil {
		return err
	}
	if err := json.Unmarshal(cols.topSkills, &in.TopSkills); err != nil {
		return fmt.Errorf("decoding top skills: %w", err)
	}
	if err := json.Unmarshal(cols.keyTrends, &in.KeyTrends); err != nil {
		return fmt.Errorf("decoding key trends: %w", err)
	}
	if err := json.Unmarshal(cols.recommendedSkills, &in.RecommendedSkills); err != nil {
		return fmt.Errorf("decoding recommended skills: %w", err)
	}
	return nil
}

// nonNil keeps empty lists encoded as [] rather than null.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func decodeSalaryRanges(raw []byte, in *model.IndustryInsight) error {
	if err := json.Unmarshal(raw, &in.SalaryRanges); err != nil {
		return fmt.Errorf("decoding salary ranges: %w", err)
	}
	return nil
}
