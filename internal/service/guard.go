package service

import "context"

// owned сущность с владельцем.
type owned interface {
	GetOwnerID() int64
}

// authorize загружает сущность и проверяет, что ею владеет principalID.
// Ничего не меняет.
func authorize[T owned](ctx context.Context, principalID int64, id string, load func(context.Context, string) (T, error)) (T, error) {
	var zero T
	e, err := load(ctx, id)
	if err != nil {
		return zero, storeErr(err)
	}
	if e.GetOwnerID() != principalID {
		return zero, ErrForbidden
	}
	return e, nil
}
