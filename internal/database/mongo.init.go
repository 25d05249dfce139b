package database

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/global"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/logger"
)

// EnsureDatabaseAndCollections đảm bảo database và các collection cần thiết
// tồn tại, rồi đăng ký chúng vào registry để các service lấy ra theo tên.
func EnsureDatabaseAndCollections(client *mongo.Client) error {
	dbName := global.ServerConfig.MongoDB_DBName

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db := client.Database(dbName)

	collections := []string{}
	v := reflect.ValueOf(global.MongoDB_ColNames)
	for i := 0; i < v.NumField(); i++ {
		collections = append(collections, v.Field(i).String())
	}

	collList, err := db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	for _, collectionName := range collections {
		exists := false
		for _, existingColl := range collList {
			if existingColl == collectionName {
				exists = true
				break
			}
		}
		if !exists {
			logger.GetAppLogger().Infof("Collection %s chưa tồn tại, tạo mới.", collectionName)
			if err := db.CreateCollection(ctx, collectionName); err != nil {
				return fmt.Errorf("failed to create collection %s: %w", collectionName, err)
			}
		}

		if _, err := global.RegistryCollections.Register(collectionName, db.Collection(collectionName)); err != nil {
			return fmt.Errorf("failed to register collection %s: %w", collectionName, err)
		}
	}

	if _, err := global.RegistryDatabase.Register(dbName, db); err != nil {
		return fmt.Errorf("failed to register database %s: %w", dbName, err)
	}

	logger.GetAppLogger().Infof("Database and collections are ensured in database: %s", dbName)
	return nil
}

// IndexedModel gắn một model với collection của nó để tạo index.
type IndexedModel struct {
	CollectionName string
	Model          interface{}
}

// EnsureIndexes tạo index cho các model theo struct tag `index`.
// Hỗ trợ: index:"unique" (unique index tăng dần), index:"single:1" /
// index:"single:-1" (index đơn). Field lấy tên từ bson tag.
func EnsureIndexes(ctx context.Context, models []IndexedModel) error {
	for _, m := range models {
		collection, exists := global.RegistryCollections.Get(m.CollectionName)
		if !exists {
			return fmt.Errorf("collection %s is not registered", m.CollectionName)
		}

		indexModels := buildIndexModels(reflect.TypeOf(m.Model))
		if len(indexModels) == 0 {
			continue
		}

		if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", m.CollectionName, err)
		}
		logger.GetAppLogger().Infof("Ensured %d indexes on collection %s", len(indexModels), m.CollectionName)
	}
	return nil
}

// buildIndexModels đọc struct tag của model và dựng danh sách IndexModel.
func buildIndexModels(rt reflect.Type) []mongo.IndexModel {
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil
	}

	var indexModels []mongo.IndexModel
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		indexTag := f.Tag.Get("index")
		if indexTag == "" {
			continue
		}

		bsonKey := bsonKeyOf(f)
		if bsonKey == "" || bsonKey == "-" {
			continue
		}

		switch {
		case indexTag == "unique":
			indexModels = append(indexModels, mongo.IndexModel{
				Keys:    bson.D{{Key: bsonKey, Value: 1}},
				Options: options.Index().SetUnique(true),
			})
		case strings.HasPrefix(indexTag, "single:"):
			order := 1
			if strings.TrimPrefix(indexTag, "single:") == "-1" {
				order = -1
			}
			indexModels = append(indexModels, mongo.IndexModel{
				Keys: bson.D{{Key: bsonKey, Value: order}},
			})
		}
	}
	return indexModels
}

// bsonKeyOf trích tên field bson từ struct tag.
func bsonKeyOf(f reflect.StructField) string {
	bsonTag := f.Tag.Get("bson")
	if bsonTag == "" {
		return ""
	}
	return strings.TrimSpace(strings.Split(bsonTag, ",")[0])
}
