package store

import (
	"context"
	"strings"
	"time"

	"github.com/cleanflow/bedsync/pkg/logger"
	"github.com/cleanflow/bedsync/pkg/models"
	"github.com/cleanflow/bedsync/pkg/utils"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicateMapping = errors.New("a mapping for this external code already exists")

type MappingRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewMappingRepo(coll *mongo.Collection) *MappingRepo {
	return &MappingRepo{coll: coll, now: time.Now}
}

// DeriveCodes fills the identifiers printed on QR labels.
func DeriveCodes(m *models.LocationMapping) {
	m.LocationID = utils.Slug(m.InternalName) + "-" + utils.Compact(m.InternalNumber)
	m.QRCodeURL = "/clean/" + m.LocationID
	m.ShortCode = strings.ToUpper(utils.Prefix(m.InternalName, 2)) + strings.ToUpper(m.InternalNumber)
}

func normalizeMapping(m *models.LocationMapping) error {
	m.ExternalCode = strings.TrimSpace(m.ExternalCode)
	m.InternalName = strings.TrimSpace(m.InternalName)
	m.InternalNumber = strings.TrimSpace(m.InternalNumber)
	m.Setor = strings.TrimSpace(m.Setor)
	if m.Type == "" {
		m.Type = models.LocationTypeBed
	}
	if err := models.Validator().Struct(m); err != nil {
		return err
	}
	DeriveCodes(m)
	return nil
}

func (r *MappingRepo) find(ctx context.Context, filter interface{}) ([]models.LocationMapping, error) {
	opts := options.Find().SetSort(bson.D{{Key: "setor", Value: 1}, {Key: "internalName", Value: 1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(err, "list location mappings")
	}
	out := []models.LocationMapping{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(err, "decode location mappings")
	}
	return out, nil
}

func (r *MappingRepo) List(ctx context.Context) ([]models.LocationMapping, error) {
	return r.find(ctx, bson.M{})
}

func (r *MappingRepo) ListActive(ctx context.Context) ([]models.LocationMapping, error) {
	return r.find(ctx, bson.M{"isActive": true})
}

func (r *MappingRepo) Create(ctx context.Context, m *models.LocationMapping) error {
	if err := normalizeMapping(m); err != nil {
		return err
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"externalCode": m.ExternalCode})
	if err != nil {
		return errors.Wrap(err, "check duplicate mapping")
	}
	if n > 0 {
		return ErrDuplicateMapping
	}

	now := r.now()
	m.ID = primitive.NilObjectID
	m.CreatedAt, m.UpdatedAt = now, now
	res, err := r.coll.InsertOne(ctx, m)
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicateMapping
	}
	if err != nil {
		return errors.Wrap(err, "insert location mapping")
	}
	m.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *MappingRepo) Update(ctx context.Context, id primitive.ObjectID, m *models.LocationMapping) error {
	if err := normalizeMapping(m); err != nil {
		return err
	}
	n, err := r.coll.CountDocuments(ctx, bson.M{"externalCode": m.ExternalCode, "_id": bson.M{"$ne": id}})
	if err != nil {
		return errors.Wrap(err, "check duplicate mapping")
	}
	if n > 0 {
		return ErrDuplicateMapping
	}

	m.ID = id
	m.UpdatedAt = r.now()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"externalCode":   m.ExternalCode,
		"internalName":   m.InternalName,
		"internalNumber": m.InternalNumber,
		"setor":          m.Setor,
		"type":           m.Type,
		"isActive":       m.IsActive,
		"locationId":     m.LocationID,
		"qrCodeUrl":      m.QRCodeURL,
		"shortCode":      m.ShortCode,
		"updatedAt":      m.UpdatedAt,
	}})
	if err != nil {
		return errors.Wrap(err, "update location mapping")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MappingRepo) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"isActive":  active,
		"updatedAt": r.now(),
	}})
	if err != nil {
		return errors.Wrap(err, "toggle location mapping")
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type ImportResult struct {
	Upserted int      `json:"upserted"`
	Modified int      `json:"modified"`
	Invalid  []string `json:"invalid,omitempty"`
}

// Import upserts mappings by external code in a single bulk write. Invalid
// entries are reported and left out.
func (r *MappingRepo) Import(ctx context.Context, mappings []models.LocationMapping) (ImportResult, error) {
	var res ImportResult
	var writes []mongo.WriteModel
	now := r.now()

	for i := range mappings {
		m := mappings[i]
		if err := normalizeMapping(&m); err != nil {
			res.Invalid = append(res.Invalid, m.ExternalCode+": "+err.Error())
			logger.Warnf("Skipping mapping %q: %v", m.ExternalCode, err)
			continue
		}
		filter := bson.M{"externalCode": m.ExternalCode}
		update := bson.M{
			"$set": bson.M{
				"internalName":   m.InternalName,
				"internalNumber": m.InternalNumber,
				"setor":          m.Setor,
				"type":           m.Type,
				"isActive":       m.IsActive,
				"locationId":     m.LocationID,
				"qrCodeUrl":      m.QRCodeURL,
				"shortCode":      m.ShortCode,
				"updatedAt":      now,
			},
			"$setOnInsert": bson.M{"createdAt": now},
		}
		writes = append(writes, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(true))
	}

	if len(writes) == 0 {
		return res, nil
	}
	bw, err := r.coll.BulkWrite(ctx, writes)
	if err != nil {
		return res, errors.Wrap(err, "import location mappings")
	}
	res.Upserted = int(bw.UpsertedCount)
	res.Modified = int(bw.ModifiedCount)
	logger.Infof("Mapping import: Match %d, Mod %d, Upsert %d", bw.MatchedCount, bw.ModifiedCount, bw.UpsertedCount)
	return res, nil
}
