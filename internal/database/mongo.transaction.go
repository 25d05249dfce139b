package database

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/common"
	"github.com/tratiger/KiraKiraDouga-Libre-sub001/internal/logger"
)

// WithTransaction chạy fn trong một transaction MongoDB.
// Session thuộc sở hữu riêng của thao tác logic tạo ra nó: được tạo ở đây,
// commit khi fn trả về nil và abort khi fn trả về lỗi, sau đó kết thúc.
// Mọi thao tác của Access Pool gọi với ctx bên trong fn sẽ tự nhận diện
// session và ép read preference về primary.
func WithTransaction(ctx context.Context, client *mongo.Client, fn func(ctx context.Context) error) error {
	session, err := client.StartSession()
	if err != nil {
		logger.GetDBLogger().WithError(err).Error("Failed to start MongoDB session")
		return common.ConvertMongoError(err)
	}
	defer session.EndSession(ctx)

	// Trong transaction mọi thao tác đọc phải thấy các ghi chưa commit của
	// chính transaction đó, nên read preference là primary.
	txnOpts := options.Transaction().
		SetReadPreference(readpref.Primary()).
		SetReadConcern(readconcern.Local()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	}, txnOpts)
	if err != nil {
		logger.GetDBLogger().WithError(err).Error("Transaction aborted")
		return common.ConvertMongoError(err)
	}
	return nil
}
