package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/franciscosanchezn/foodgram-api/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const importBatchSize = 500

// CatalogService serves the read-only tag and ingredient catalogs and
// bulk-loads them from CSV.
type CatalogService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	// ListIngredients returns ingredients whose name starts with namePrefix, ignoring case
	ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error)
	// ImportIngredients reads headerless name,measurement_unit rows
	ImportIngredients(ctx context.Context, r io.Reader, force bool) (int64, error)
	// ImportTags reads headerless name,slug rows
	ImportTags(ctx context.Context, r io.Reader, force bool) (int64, error)
}

type catalogService struct {
	db *gorm.DB
}

func NewCatalogService(db *gorm.DB) CatalogService {
	return &catalogService{db: db}
}

func (s *catalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

func (s *catalogService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get tag %d: %w", id, err)
	}
	return &tag, nil
}

func (s *catalogService) ListIngredients(ctx context.Context, namePrefix string) ([]models.Ingredient, error) {
	query := s.db.WithContext(ctx).Order("name")
	if namePrefix = strings.TrimSpace(namePrefix); namePrefix != "" {
		query = query.Where("LOWER(name) LIKE ? ESCAPE '\\'", escapeLike(strings.ToLower(namePrefix))+"%")
	}

	var ingredients []models.Ingredient
	if err := query.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("list ingredients: %w", err)
	}
	return ingredients, nil
}

func (s *catalogService) GetIngredient(ctx context.Context, id uint) (*models.Ingredient, error) {
	var ingredient models.Ingredient
	if err := s.db.WithContext(ctx).First(&ingredient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get ingredient %d: %w", id, err)
	}
	return &ingredient, nil
}

func (s *catalogService) ImportIngredients(ctx context.Context, r io.Reader, force bool) (int64, error) {
	rows, err := readPairs(r)
	if err != nil {
		return 0, fmt.Errorf("read ingredients csv: %w", err)
	}
	items := make([]models.Ingredient, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.Ingredient{Name: row[0], MeasurementUnit: row[1]})
	}
	return importRows(s.db.WithContext(ctx), &models.Ingredient{}, items, force)
}

func (s *catalogService) ImportTags(ctx context.Context, r io.Reader, force bool) (int64, error) {
	rows, err := readPairs(r)
	if err != nil {
		return 0, fmt.Errorf("read tags csv: %w", err)
	}
	items := make([]models.Tag, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.Tag{Name: row[0], Slug: row[1]})
	}
	return importRows(s.db.WithContext(ctx), &models.Tag{}, items, force)
}

// importRows inserts items in one transaction, skipping rows that collide
// with an existing unique key. force empties the table first.
func importRows[T any](db *gorm.DB, model *T, items []T, force bool) (int64, error) {
	var inserted int64
	err := db.Transaction(func(tx *gorm.DB) error {
		if force {
			result := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model)
			if result.Error != nil {
				return fmt.Errorf("truncate: %w", result.Error)
			}
			log.WithField("deleted", result.RowsAffected).Info("Catalog table cleared")
		}
		if len(items) == 0 {
			return nil
		}
		result := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(&items, importBatchSize)
		if result.Error != nil {
			return fmt.Errorf("bulk insert: %w", result.Error)
		}
		inserted = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.WithFields(log.Fields{
		"rows":     len(items),
		"inserted": inserted,
	}).Info("Catalog import finished")
	return inserted, nil
}

// readPairs reads two-column headerless CSV, trimming every value
func readPairs(r io.Reader) ([][2]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	var rows [][2]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		first, second := strings.TrimSpace(record[0]), strings.TrimSpace(record[1])
		if first == "" || second == "" {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("line %d: empty value", line)
		}
		rows = append(rows, [2]string{first, second})
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
