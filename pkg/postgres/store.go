package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopa-beauty/storefront-api/pkg/models"
	"github.com/shopa-beauty/storefront-api/pkg/shop"
)

var _ shop.Store = (*Store)(nil)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if pgErrorCode(err) == uniqueViolation {
		return shop.ErrDuplicateUser
	}
	return err
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shop.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shop.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AddCartItem relies on the (user_id, product_id) unique index: the insert
// turns into a quantity increment when the pair already exists.
func (s *Store) AddCartItem(ctx context.Context, userID uint, productID string, quantity int, addedAt time.Time) (*models.CartItem, error) {
	var item models.CartItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.CartItem{
			UserID:    userID,
			ProductID: productID,
			Quantity:  quantity,
			AddedAt:   addedAt,
		}
		err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity": gorm.Expr("cart_items.quantity + ?", quantity),
			}),
		}).Create(&row).Error
		if err != nil {
			return err
		}

		return tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	})
	if pgErrorCode(err) == foreignKeyViolation {
		return nil, shop.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Store) SetCartItemQuantity(ctx context.Context, id uint, quantity int) error {
	result := s.db.WithContext(ctx).Model(&models.CartItem{}).Where("id = ?", id).Update("quantity", quantity)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shop.ErrCartItemNotFound
	}
	return nil
}

func (s *Store) DeleteCartItem(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&models.CartItem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shop.ErrCartItemNotFound
	}
	return nil
}

func (s *Store) ListCartItems(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&items).Error
	return items, err
}

// PlaceOrder writes the order (GORM inserts the Items association in the
// same statement batch) and deletes the consumed cart lines. Any error rolls
// the whole transaction back.
func (s *Store) PlaceOrder(ctx context.Context, order *models.Order, clearCartItemIDs []uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		if len(clearCartItemIDs) == 0 {
			return nil
		}
		return tx.Where("id IN ?", clearCartItemIDs).Delete(&models.CartItem{}).Error
	})
	if pgErrorCode(err) == foreignKeyViolation {
		return shop.ErrUserNotFound
	}
	return err
}

func (s *Store) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		First(&order, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shop.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Store) ListOrders(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := []models.Order{}
	err := s.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	return orders, err
}
