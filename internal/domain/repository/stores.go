package repository

// Stores agrupa los repositorios atados a una misma transacción del almacén durable.
type Stores struct {
	Products   ProductRepository
	Categories CategoryRepository
	Batches    StockBatchRepository
	Movements  StockMovementRepository
	Sales      SalesTransactionRepository
	Payments   CreditPaymentRepository
}
