package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/silverhyuk/david-remittance-service/internal/domain"
	"github.com/silverhyuk/david-remittance-service/internal/mongodb"
)

const (
	accountCollection     = "accounts"
	transactionCollection = "transactions"
)

// accountDocument is the persisted shape of an account. Monetary values are
// stored as strings to keep arbitrary precision.
type accountDocument struct {
	ID            string    `bson:"_id"`
	AccountNumber string    `bson:"account_number"`
	AccountName   string    `bson:"account_name"`
	Balance       string    `bson:"balance"`
	Status        string    `bson:"status"`
	CreatedAt     time.Time `bson:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at"`
}

// transactionDocument is the persisted shape of a transaction.
type transactionDocument struct {
	ID              string    `bson:"_id"`
	SourceAccountID *string   `bson:"source_account_id,omitempty"`
	TargetAccountID *string   `bson:"target_account_id,omitempty"`
	Amount          string    `bson:"amount"`
	Type            string    `bson:"type"`
	Status          string    `bson:"status"`
	Description     string    `bson:"description"`
	CreatedAt       time.Time `bson:"created_at"`
	UpdatedAt       time.Time `bson:"updated_at"`
}

// MongoAccountStore is the MongoDB-backed AccountStore.
type MongoAccountStore struct {
	client *mongodb.Client
}

// NewMongoAccountStore creates the account repository and ensures the unique
// index on account_number.
func NewMongoAccountStore(ctx context.Context, client *mongodb.Client) (*MongoAccountStore, error) {
	err := client.EnsureIndexes(ctx, accountCollection, mongo.IndexModel{
		Keys:    bson.D{{Key: "account_number", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, err
	}

	return &MongoAccountStore{client: client}, nil
}

// Save upserts the account by identifier.
func (s *MongoAccountStore) Save(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	database, err := s.client.Database()
	if err != nil {
		return nil, err
	}

	doc := accountToDocument(account)

	_, err = database.Collection(accountCollection).ReplaceOne(
		ctx,
		bson.D{{Key: "_id", Value: doc.ID}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("saving account %s: %w", account.ID, err)
	}

	saved := *account

	return &saved, nil
}

// FindByID returns the account or ErrNotFound.
func (s *MongoAccountStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id.String()}})
}

// FindByAccountNumber returns the account with the given number or ErrNotFound.
func (s *MongoAccountStore) FindByAccountNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return s.findOne(ctx, bson.D{{Key: "account_number", Value: accountNumber}})
}

// FindAll returns all stored accounts.
func (s *MongoAccountStore) FindAll(ctx context.Context) ([]*domain.Account, error) {
	database, err := s.client.Database()
	if err != nil {
		return nil, err
	}

	cursor, err := database.Collection(accountCollection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []accountDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding accounts: %w", err)
	}

	accounts := make([]*domain.Account, 0, len(docs))

	for _, doc := range docs {
		account, err := documentToAccount(doc)
		if err != nil {
			return nil, err
		}

		accounts = append(accounts, account)
	}

	return accounts, nil
}

func (s *MongoAccountStore) findOne(ctx context.Context, filter bson.D) (*domain.Account, error) {
	database, err := s.client.Database()
	if err != nil {
		return nil, err
	}

	var doc accountDocument

	err = database.Collection(accountCollection).FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("finding account: %w", err)
	}

	return documentToAccount(doc)
}

// MongoTransactionStore is the MongoDB-backed TransactionStore.
type MongoTransactionStore struct {
	client *mongodb.Client
}

// NewMongoTransactionStore creates the transaction repository and ensures the
// query indexes on account references, type and status.
func NewMongoTransactionStore(ctx context.Context, client *mongodb.Client) (*MongoTransactionStore, error) {
	err := client.EnsureIndexes(ctx, transactionCollection,
		mongo.IndexModel{Keys: bson.D{{Key: "source_account_id", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "target_account_id", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "type", Value: 1}}},
		mongo.IndexModel{Keys: bson.D{{Key: "status", Value: 1}}},
	)
	if err != nil {
		return nil, err
	}

	return &MongoTransactionStore{client: client}, nil
}

// Save upserts the transaction by identifier.
func (s *MongoTransactionStore) Save(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	database, err := s.client.Database()
	if err != nil {
		return nil, err
	}

	doc := transactionToDocument(transaction)

	_, err = database.Collection(transactionCollection).ReplaceOne(
		ctx,
		bson.D{{Key: "_id", Value: doc.ID}},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return nil, fmt.Errorf("saving transaction %s: %w", transaction.ID, err)
	}

	saved := *transaction

	return &saved, nil
}

// FindByID returns the transaction or ErrNotFound.
func (s *MongoTransactionStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	database, err := s.client.Database()
	if err != nil {
		return nil, err
	}

	var doc transactionDocument

	err = database.Collection(transactionCollection).FindOne(ctx, bson.D{{Key: "_id", Value: id.String()}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("finding transaction: %w", err)
	}

	return documentToTransaction(doc)
}

// FindBySourceAccountID returns all transactions debiting the account.
func (s *MongoTransactionStore) FindBySourceAccountID(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	return s.find(ctx, bson.D{{Key: "source_account_id", Value: accountID.String()}})
}

// FindByTargetAccountID returns all transactions crediting the account.
func (s *MongoTransactionStore) FindByTargetAccountID(ctx context.Context, accountID uuid.UUID) ([]*domain.Transaction, error) {
	return s.find(ctx, bson.D{{Key: "target_account_id", Value: accountID.String()}})
}

// FindByType returns all transactions of the given type.
func (s *MongoTransactionStore) FindByType(ctx context.Context, transactionType domain.TransactionType) ([]*domain.Transaction, error) {
	return s.find(ctx, bson.D{{Key: "type", Value: string(transactionType)}})
}

// FindByStatus returns all transactions in the given lifecycle state.
func (s *MongoTransactionStore) FindByStatus(ctx context.Context, status domain.TransactionStatus) ([]*domain.Transaction, error) {
	return s.find(ctx, bson.D{{Key: "status", Value: string(status)}})
}

func (s *MongoTransactionStore) find(ctx context.Context, filter bson.D) ([]*domain.Transaction, error) {
	database, err := s.client.Database()
	if err != nil {
		return nil, err
	}

	cursor, err := database.Collection(transactionCollection).Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []transactionDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decoding transactions: %w", err)
	}

	transactions := make([]*domain.Transaction, 0, len(docs))

	for _, doc := range docs {
		transaction, err := documentToTransaction(doc)
		if err != nil {
			return nil, err
		}

		transactions = append(transactions, transaction)
	}

	return transactions, nil
}

func accountToDocument(account *domain.Account) accountDocument {
	return accountDocument{
		ID:            account.ID.String(),
		AccountNumber: account.AccountNumber,
		AccountName:   account.AccountName,
		Balance:       account.Balance.String(),
		Status:        string(account.Status),
		CreatedAt:     account.CreatedAt,
		UpdatedAt:     account.UpdatedAt,
	}
}

func documentToAccount(doc accountDocument) (*domain.Account, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing account id %q: %w", doc.ID, err)
	}

	balance, err := decimal.NewFromString(doc.Balance)
	if err != nil {
		return nil, fmt.Errorf("parsing balance %q of account %s: %w", doc.Balance, doc.ID, err)
	}

	return &domain.Account{
		ID:            id,
		AccountNumber: doc.AccountNumber,
		AccountName:   doc.AccountName,
		Balance:       balance,
		Status:        domain.AccountStatus(doc.Status),
		CreatedAt:     doc.CreatedAt,
		UpdatedAt:     doc.UpdatedAt,
	}, nil
}

func transactionToDocument(transaction *domain.Transaction) transactionDocument {
	doc := transactionDocument{
		ID:          transaction.ID.String(),
		Amount:      transaction.Amount.String(),
		Type:        string(transaction.Type),
		Status:      string(transaction.Status),
		Description: transaction.Description,
		CreatedAt:   transaction.CreatedAt,
		UpdatedAt:   transaction.UpdatedAt,
	}

	if transaction.SourceAccountID != nil {
		source := transaction.SourceAccountID.String()
		doc.SourceAccountID = &source
	}

	if transaction.TargetAccountID != nil {
		target := transaction.TargetAccountID.String()
		doc.TargetAccountID = &target
	}

	return doc
}

func documentToTransaction(doc transactionDocument) (*domain.Transaction, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return nil, fmt.Errorf("parsing transaction id %q: %w", doc.ID, err)
	}

	amount, err := decimal.NewFromString(doc.Amount)
	if err != nil {
		return nil, fmt.Errorf("parsing amount %q of transaction %s: %w", doc.Amount, doc.ID, err)
	}

	transaction := &domain.Transaction{
		ID:          id,
		Amount:      amount,
		Type:        domain.TransactionType(doc.Type),
		Status:      domain.TransactionStatus(doc.Status),
		Description: doc.Description,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}

	if doc.SourceAccountID != nil {
		source, err := uuid.Parse(*doc.SourceAccountID)
		if err != nil {
			return nil, fmt.Errorf("parsing source account id of transaction %s: %w", doc.ID, err)
		}

		transaction.SourceAccountID = &source
	}

	if doc.TargetAccountID != nil {
		target, err := uuid.Parse(*doc.TargetAccountID)
		if err != nil {
			return nil, fmt.Errorf("parsing target account id of transaction %s: %w", doc.ID, err)
		}

		transaction.TargetAccountID = &target
	}

	return transaction, nil
}
