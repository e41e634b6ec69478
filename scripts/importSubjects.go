package main

import (
	"encoding/csv"
	"os"
	"strings"

	"educa/config"
	"educa/database"
	"educa/logger"
	"educa/models/course"
	"educa/utils"
)

// Loads catalogue subjects from a CSV with a title column and an optional slug column.
// Usage: go run scripts/importSubjects.go [subjects.csv]
func main() {
	config.LoadConfig()
	if err := logger.Init(config.AppConfig.AppMode); err != nil {
		panic(err)
	}
	defer logger.Log.Sync()
	database.ConnectDb()
	db := database.Database.Db

	path := "subjects.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	file, err := os.Open(path)
	if err != nil {
		logger.Log.Fatal("Failed to open CSV file", "path", path, "error", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		logger.Log.Fatal("Failed to read CSV", "error", err)
	}
	if len(records) < 2 {
		logger.Log.Fatal("CSV file is empty or has only headers")
	}

	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := headerIndex["title"]; !ok {
		logger.Log.Fatal("CSV needs a title column", "headers", records[0])
	}

	inserted, updated, skipped := 0, 0, 0
	for _, row := range records[1:] {
		title := getField(row, headerIndex, "title")
		if title == "" {
			skipped++
			continue
		}
		slug := utils.Slugify(getField(row, headerIndex, "slug"))
		if slug == "" {
			slug = utils.Slugify(title)
		}
		if slug == "" {
			logger.Log.Warn("Skipping subject without a usable slug", "title", title)
			skipped++
			continue
		}

		var existing course.Subject
		if err := db.Where("slug = ?", slug).First(&existing).Error; err != nil {
			if err := db.Create(&course.Subject{Title: title, Slug: slug}).Error; err != nil {
				logger.Log.Error("Error inserting subject", "slug", slug, "error", err)
				continue
			}
			inserted++
			continue
		}

		if existing.Title != title {
			existing.Title = title
			if err := db.Save(&existing).Error; err != nil {
				logger.Log.Error("Error updating subject", "slug", slug, "error", err)
				continue
			}
		}
		updated++
	}

	logger.Log.Info("Import complete", "inserted", inserted, "updated", updated, "skipped", skipped)
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
