package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/engine"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/ingest"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/output"
	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/region"
)

type regionView struct {
	Label string `json:"label"`
	Code  string `json:"code"`
}

func listRegions() gin.HandlerFunc {
	return func(c *gin.Context) {
		labels, codes := region.Labels(), region.Codes()
		out := make([]regionView, len(labels))
		records := make([][]string, len(labels))
		for i := range labels {
			out[i] = regionView{Label: labels[i], Code: codes[i]}
			records[i] = []string{labels[i], codes[i]}
		}
		if wantsCSV(c) {
			c.Header("Content-Type", "text/csv; charset=utf-8")
			c.Status(http.StatusOK)
			if err := output.WriteRecords(c.Writer, []string{"label", "code"}, records); err != nil {
				_ = c.Error(err)
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"regions": out})
	}
}

func compareEC2() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := bindEC2Entries(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		s := sessionFrom(c)
		rows := s.CompareAll(c.Request.Context(), entries)

		var message string
		if c.Query("filter") == "cheapest" {
			filtered, ok := engine.FilterCheapest(rows)
			if !ok {
				message = engine.NothingToFilter
			}
			rows = filtered
		}

		if wantsCSV(c) {
			c.Header("Content-Type", "text/csv; charset=utf-8")
			c.Header("Content-Disposition", `attachment; filename="ec2_graviton_comparison.csv"`)
			if message != "" {
				c.Header(MessageHeader, message)
			}
			c.Status(http.StatusOK)
			if err := output.WriteComparisonCSV(c.Writer, rows); err != nil {
				_ = c.Error(err)
			}
			return
		}
		body := gin.H{"request_id": s.ID, "results": nonNil(rows)}
		if message != "" {
			body["message"] = message
		}
		c.JSON(http.StatusOK, body)
	}
}

func priceRDS() gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := ingest.ParseRDSJSON(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		s := sessionFrom(c)
		recs := s.PriceAll(c.Request.Context(), entries)

		if wantsCSV(c) {
			c.Header("Content-Type", "text/csv; charset=utf-8")
			c.Header("Content-Disposition", `attachment; filename="rds_pricing.csv"`)
			c.Status(http.StatusOK)
			if err := output.WriteRDSCSV(c.Writer, recs); err != nil {
				_ = c.Error(err)
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"request_id": s.ID, "results": nonNil(recs)})
	}
}

// bindEC2Entries accepts either a text/csv body or a JSON array.
func bindEC2Entries(c *gin.Context) ([]models.EC2Entry, error) {
	if strings.HasPrefix(c.ContentType(), "text/csv") {
		return ingest.ParseEC2CSV(c.Request.Body)
	}
	var entries []models.EC2Entry
	if err := c.ShouldBindJSON(&entries); err != nil {
		return nil, err
	}
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, models.WithRow(err, i+1)
		}
	}
	return entries, nil
}

func wantsCSV(c *gin.Context) bool {
	return c.Query("format") == "csv"
}

func nonNil[T any](rows []T) []T {
	if rows == nil {
		return []T{}
	}
	return rows
}
