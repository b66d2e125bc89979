package query

// Aliases so handlers can speak in query terms without importing readmodel
import "github.com/example/lastara-storefront/internal/readmodel"

type ProductReadModel = readmodel.ProductReadModel
type ImageReadModel = readmodel.ImageReadModel
type SlideReadModel = readmodel.SlideReadModel
type SubscriptionReadModel = readmodel.SubscriptionReadModel
type OperatorReadModel = readmodel.OperatorReadModel
type SessionReadModel = readmodel.SessionReadModel
