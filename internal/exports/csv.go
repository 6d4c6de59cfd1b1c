package exports

import (
	"encoding/csv"
	"io"
	"strconv"

	"leadgen_backend/internal/leads/domain"
)

var csvHeader = []string{
	"id", "business_name", "address", "city", "country", "phone", "email", "website",
	"social_handle", "rating", "review_count", "source", "score", "grade", "priority",
	"pipeline_stage", "created_at",
}

// WriteLeadsCSV writes one header row and one row per lead.
func WriteLeadsCSV(w io.Writer, leads []domain.NormalizedLead) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return err
	}

	for _, lead := range leads {
		row := []string{
			lead.ID.String(),
			lead.BusinessName,
			lead.Address,
			lead.City,
			lead.Country,
			lead.Phone,
			lead.Email,
			lead.Website,
			lead.SocialHandle,
			formatFloat(lead.Rating),
			formatInt(lead.ReviewCount),
			string(lead.Source),
			formatInt(lead.Score),
			formatString(lead.Grade),
			formatString(lead.Priority),
			lead.PipelineStage,
			lead.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatString[T ~string](v *T) string {
	if v == nil {
		return ""
	}
	return string(*v)
}
