package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerlock/internal/domain"
	"github.com/iho/ledgerlock/internal/infrastructure/postgres/generated"
)

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) (decimal.Decimal, error) {
	if !n.Valid {
		return decimal.Zero, nil
	}
	if n.NaN || n.InfinityModifier != pgtype.Finite {
		return decimal.Zero, fmt.Errorf("non-finite numeric value")
	}

	return decimal.NewFromBigInt(n.Int, n.Exp), nil
}

func moneyToNumeric(m domain.Money) pgtype.Numeric {
	return decimalToNumeric(m.Decimal())
}

func numericToMoney(n pgtype.Numeric) (domain.Money, error) {
	d, err := numericToDecimal(n)
	if err != nil {
		return domain.Money{}, err
	}

	return domain.NewMoney(d), nil
}

func accountIDToUUID(id domain.AccountID) pgtype.UUID {
	return pgtype.UUID{Bytes: id.UUID(), Valid: true}
}

func optionalAccountIDToUUID(id domain.AccountID, ok bool) pgtype.UUID {
	if !ok {
		return pgtype.UUID{}
	}

	return accountIDToUUID(id)
}

func uuidToAccountID(u pgtype.UUID) *domain.AccountID {
	if !u.Valid {
		return nil
	}

	id := domain.AccountIDFromUUID(uuid.UUID(u.Bytes))
	return &id
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func activityToParams(id string, a domain.Activity) generated.CreateActivityParams {
	source, hasSource := a.Source()
	target, hasTarget := a.Target()

	return generated.CreateActivityParams{
		ID:            id,
		SourceAccount: optionalAccountIDToUUID(source, hasSource),
		TargetAccount: optionalAccountIDToUUID(target, hasTarget),
		Amount:        moneyToNumeric(a.Amount()),
		OccurredAt:    timeToPgTimestamptz(a.Timestamp()),
	}
}

func rowToActivity(row generated.Activity) (domain.Activity, error) {
	amount, err := numericToMoney(row.Amount)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("activity %s: %w", row.ID, err)
	}

	return domain.RestoreActivity(
		uuidToAccountID(row.SourceAccount),
		uuidToAccountID(row.TargetAccount),
		row.OccurredAt.Time,
		amount,
	)
}
