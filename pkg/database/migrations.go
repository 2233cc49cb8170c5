package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shipdesk/pkg/logger"
)

type Migration struct {
	Version     int
	Description string
	Up          func(context.Context, *mongo.Database) error
	Down        func(context.Context, *mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	migrations []Migration
	logger     *logger.Logger
}

func NewMigrator(db *mongo.Database, log *logger.Logger) *Migrator {
	return &Migrator{
		db:         db,
		migrations: getMigrations(),
		logger:     log,
	}
}

func (m *Migrator) Up(ctx context.Context) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}

		m.logger.WithField("version", migration.Version).Infof("Running migration: %s", migration.Description)

		if err := migration.Up(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if err := m.updateVersion(ctx, migration.Version); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) Down(ctx context.Context, targetVersion int) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version > currentVersion || migration.Version <= targetVersion {
			continue
		}

		m.logger.WithField("version", migration.Version).Infof("Reverting migration: %s", migration.Description)

		if err := migration.Down(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d rollback failed: %w", migration.Version, err)
		}

		previousVersion := targetVersion
		if i > 0 {
			previousVersion = m.migrations[i-1].Version
		}

		if err := m.updateVersion(ctx, previousVersion); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) getCurrentVersion(ctx context.Context) (int, error) {
	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection(CollectionMigrations).FindOne(ctx, bson.D{}).Decode(&result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(ctx context.Context, version int) error {
	_, err := m.db.Collection(CollectionMigrations).ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)

	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create rate_cards indexes",
			Up:          createRateCardIndexes,
			Down:        dropIndexes(CollectionRateCards, "uniq_name_per_company", "company_status", "scope_status", "created_at_desc"),
		},
		{
			Version:     2,
			Description: "Create companies and company_groups indexes",
			Up:          createCompanyIndexes,
			Down: func(ctx context.Context, db *mongo.Database) error {
				if err := dropIndexes(CollectionCompanies, "default_rate_card")(ctx, db); err != nil {
					return err
				}
				return dropIndexes(CollectionCompanyGroups, "group_members")(ctx, db)
			},
		},
		{
			Version:     3,
			Description: "Create audit_logs indexes",
			Up:          createAuditLogIndexes,
			Down:        dropIndexes(CollectionAuditLogs, "resource_history"),
		},
		{
			Version:     4,
			Description: "Create shipments analytics indexes",
			Up:          createShipmentIndexes,
			Down:        dropIndexes(CollectionShipments, "rate_card_created", "created_at"),
		},
	}
}

// RateCardUniqueIndex enforces one live card per name within a company scope.
// Global cards share the null company_id and are unique among themselves.
func RateCardUniqueIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{{Key: "company_id", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().
			SetName("uniq_name_per_company").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"is_deleted": false}),
	}
}

func createRateCardIndexes(ctx context.Context, db *mongo.Database) error {
	collection := db.Collection(CollectionRateCards)

	indexes := []mongo.IndexModel{
		RateCardUniqueIndex(),
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "status", Value: 1}, {Key: "is_deleted", Value: 1}},
			Options: options.Index().SetName("company_status"),
		},
		{
			Keys:    bson.D{{Key: "scope", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index().SetName("scope_status"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at_desc"),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func createCompanyIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionCompanies).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "settings.default_rate_card_id", Value: 1}},
		Options: options.Index().
			SetName("default_rate_card").
			SetSparse(true),
	})
	if err != nil {
		return err
	}

	_, err = db.Collection(CollectionCompanyGroups).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "company_ids", Value: 1}},
		Options: options.Index().SetName("group_members"),
	})
	return err
}

func createAuditLogIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionAuditLogs).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "resource", Value: 1},
			{Key: "resource_id", Value: 1},
			{Key: "created_at", Value: -1},
		},
		Options: options.Index().SetName("resource_history"),
	})
	return err
}

func createShipmentIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(CollectionShipments).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "rate_card_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("rate_card_created"),
		},
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("created_at"),
		},
	})
	return err
}

func dropIndexes(collection string, names ...string) func(context.Context, *mongo.Database) error {
	return func(ctx context.Context, db *mongo.Database) error {
		for _, name := range names {
			if _, err := db.Collection(collection).Indexes().DropOne(ctx, name); err != nil {
				return fmt.Errorf("failed to drop index %s.%s: %w", collection, name, err)
			}
		}
		return nil
	}
}
