package services

import (
	"context"
	"errors"
	"log"
	"time"

	"shop-backend/models"
)

// MergeGuestCart reconciles a guest cart into the user's cart when a login
// attaches the guest session to an authenticated user. Duplicate products
// sum their quantities (clamped to current stock and flagged, never
// silently dropped); the rest are re-parented. The whole procedure is one
// transaction under both cart row locks, so no caller can observe items
// duplicated across carts or a deleted guest cart with items missing, and
// no concurrent AddItem on the guest cart can interleave.
func (s *CartService) MergeGuestCart(ctx context.Context, guestSessionID string, userID int) (*models.MergeResult, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return nil, engineError(err)
	}
	defer tx.Rollback(ctx)

	guestOwner := models.GuestOwner(guestSessionID)
	guestCart, err := s.carts.LockByOwner(ctx, tx, guestOwner)
	if err != nil {
		var notFound *models.NotFoundError
		if errors.As(err, &notFound) {
			// Nothing to merge.
			return &models.MergeResult{}, nil
		}
		return nil, engineError(err)
	}

	userOwner := models.UserOwner(userID)
	userCart, err := s.carts.LockByOwner(ctx, tx, userOwner)
	if err != nil {
		var notFound *models.NotFoundError
		if !errors.As(err, &notFound) {
			return nil, engineError(err)
		}
		userCart, err = s.carts.Create(ctx, tx, userOwner, time.Now().Add(s.ttl))
		if err != nil {
			return nil, engineError(err)
		}
	}

	guestItems, err := s.carts.ListItems(ctx, tx, guestCart.ID)
	if err != nil {
		return nil, engineError(err)
	}
	userItems, err := s.carts.ListItems(ctx, tx, userCart.ID)
	if err != nil {
		return nil, engineError(err)
	}

	byProduct := make(map[int]models.CartItem, len(userItems))
	for _, item := range userItems {
		byProduct[item.ProductID] = item
	}

	result := &models.MergeResult{CartID: userCart.ID}

	for _, guestItem := range guestItems {
		existing, dup := byProduct[guestItem.ProductID]
		if !dup {
			if err := s.carts.MoveItem(ctx, tx, guestItem.ID, userCart.ID); err != nil {
				return nil, engineError(err)
			}
			result.Moved++
			continue
		}

		merged := existing.Quantity + guestItem.Quantity
		check, err := s.products.CheckAvailable(ctx, tx, guestItem.ProductID, merged)
		if err != nil {
			// The clamp is a soft check and order time re-verifies, so a
			// failed read keeps the summed quantity rather than failing the
			// whole merge. It must not pass silently though.
			log.Printf("stock check failed during merge for product %d, keeping quantity %d: %v",
				guestItem.ProductID, merged, err)
		} else if !check.Available {
			// Clamp to what the ledger has, keeping at least one unit; the
			// flag tells the caller the excess was not carried over.
			clamped := check.CurrentStock
			if clamped < 1 {
				clamped = 1
			}
			merged = clamped
			result.Clamped = append(result.Clamped, guestItem.ProductID)
		}

		if err := s.carts.SetItemQuantity(ctx, tx, existing.ID, merged); err != nil {
			return nil, engineError(err)
		}
		if err := s.carts.DeleteItem(ctx, tx, guestItem.ID); err != nil {
			return nil, engineError(err)
		}
		result.Merged++
	}

	if err := s.carts.Delete(ctx, tx, guestCart.ID); err != nil {
		return nil, engineError(err)
	}
	if err := s.carts.Touch(ctx, tx, userCart.ID, time.Now().Add(s.ttl)); err != nil {
		return nil, engineError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, engineError(err)
	}

	s.invalidate(ctx, guestOwner)
	s.invalidate(ctx, userOwner)
	log.Printf("merged guest cart %d into user cart %d (%d merged, %d moved)",
		guestCart.ID, userCart.ID, result.Merged, result.Moved)
	return result, nil
}
