package dynamo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/dinnerpicker/internal/storage"
	"github.com/mmynk/dinnerpicker/internal/storage/storagetest"
)

func TestDynamoStore(t *testing.T) {
	fakes := make(map[*testing.T]*fakeDynamo)

	storagetest.Run(t, func(t *testing.T, environment string) storage.Store {
		fake, ok := fakes[t]
		if !ok {
			fake = newFakeDynamo()
			fakes[t] = fake
		}
		return New(fake, "dinner_selections", environment)
	})
}

func TestDynamoStorePaginatesLargeDays(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	store := New(fake, "dinner_selections", "prod")
	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	// More people than one fake page and more than one delete batch.
	for i := 0; i < 30; i++ {
		sel := storagetest.NewSelection("2026-10-19", fmt.Sprintf("guest-%02d", i), storagetest.Dish("1"), nil, at)
		require.NoError(t, store.UpsertSelection(ctx, sel))
	}

	day, err := store.ListSelections(ctx, "2026-10-19")
	require.NoError(t, err)
	assert.Len(t, day, 30)

	require.NoError(t, store.DeleteSelections(ctx, "2026-10-19"))

	day, err = store.ListSelections(ctx, "2026-10-19")
	require.NoError(t, err)
	assert.Empty(t, day)
}

func TestDynamoStoreSurfacesStorageErrors(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	fake.failWith = errors.New("RequestError: send request failed")
	store := New(fake, "dinner_selections", "prod")

	err := store.UpsertSelection(ctx, storagetest.NewSelection("2026-10-19", "Tom", storagetest.Dish("1"), nil, time.Now()))
	assert.True(t, storage.IsStorageError(err))

	_, err = store.ListSelections(ctx, "2026-10-19")
	assert.True(t, storage.IsStorageError(err))

	err = store.DeleteSelections(ctx, "2026-10-19")
	assert.True(t, storage.IsStorageError(err))
}

func TestEnsureTable(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	store := New(fake, "dinner_selections", "dev")

	require.NoError(t, store.EnsureTable(ctx))
	assert.True(t, fake.tables["dinner_selections"])

	// Second call finds the table and does nothing.
	require.NoError(t, store.EnsureTable(ctx))
}

func TestPartitionKey(t *testing.T) {
	store := New(nil, "t", "prod")
	assert.Equal(t, "prod#2026-10-19", store.partitionKey("2026-10-19"))
}

func TestUpsertRetryNeverMovesStampBackwards(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	store := New(fake, "dinner_selections", "prod")
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	d := storagetest.Dish

	// A is stored at t=10.
	require.NoError(t, store.UpsertSelection(ctx, storagetest.NewSelection("2026-10-19", "Tom", d("A"), nil, base.Add(10*time.Second))))

	// C lands at t=20 right after B's first attempt is rejected.
	newer, err := attributevalue.MarshalMap(item{
		PK:          store.partitionKey("2026-10-19"),
		SK:          "Tom",
		Environment: "prod",
		Date:        "2026-10-19",
		Starter:     d("C"),
		UpdatedAt:   base.Add(20 * time.Second).UnixNano(),
	})
	require.NoError(t, err)
	fake.onConflict = func(items map[string]map[string]map[string]types.AttributeValue) {
		items[store.partitionKey("2026-10-19")]["Tom"] = newer
	}

	// B carries t=5.
	require.NoError(t, store.UpsertSelection(ctx, storagetest.NewSelection("2026-10-19", "Tom", nil, d("B"), base.Add(5*time.Second))))

	day, err := store.ListSelections(ctx, "2026-10-19")
	require.NoError(t, err)
	tom := day["Tom"]
	require.NotNil(t, tom)
	assert.True(t, tom.UpdatedAt.Equal(base.Add(20*time.Second)), "updated_at = %s", tom.UpdatedAt)
	assert.Nil(t, tom.Starter)
	require.NotNil(t, tom.Main)
	assert.Equal(t, "B", *tom.Main)
}

func TestUpsertGivesUpAfterRepeatedConflicts(t *testing.T) {
	ctx := context.Background()
	fake := newFakeDynamo()
	store := New(fake, "dinner_selections", "prod")
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	pk := store.partitionKey("2026-10-19")

	require.NoError(t, store.UpsertSelection(ctx, storagetest.NewSelection("2026-10-19", "Tom", storagetest.Dish("A"), nil, base)))

	// Every rejected attempt is followed by an even newer write.
	next := base
	var bump func(items map[string]map[string]map[string]types.AttributeValue)
	bump = func(items map[string]map[string]map[string]types.AttributeValue) {
		next = next.Add(time.Second)
		replaced := make(map[string]types.AttributeValue, len(items[pk]["Tom"]))
		for k, v := range items[pk]["Tom"] {
			replaced[k] = v
		}
		replaced["updated_at"] = &types.AttributeValueMemberN{Value: fmt.Sprint(next.UnixNano())}
		items[pk]["Tom"] = replaced
		fake.onConflict = bump
	}
	fake.onConflict = bump

	err := store.UpsertSelection(ctx, storagetest.NewSelection("2026-10-19", "Tom", nil, storagetest.Dish("B"), base.Add(-time.Second)))
	assert.True(t, storage.IsStorageError(err))
}
