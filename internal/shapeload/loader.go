// Package shapeload ingests MSA, submarket, and trade-area boundary
// polygons from shapefiles into the market.* schema.
package shapeload

import (
	"context"
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/impact-engine/internal/db"
)

// Kind selects the target table for a load.
type Kind string

const (
	KindMSA       Kind = "msa"
	KindSubmarket Kind = "submarket"
	KindTradeArea Kind = "trade_area"
)

// target maps a kind to its table and upsert shape.
type target struct {
	table        string
	columns      []string
	conflictKeys []string
}

var targets = map[Kind]target{
	KindMSA: {
		table:        "market.msas",
		columns:      []string{"code", "name", "geom"},
		conflictKeys: []string{"code"},
	},
	KindSubmarket: {
		table:        "market.submarkets",
		columns:      []string{"name", "msa_id", "geom"},
		conflictKeys: []string{"name"},
	},
	KindTradeArea: {
		table:        "market.trade_areas",
		columns:      []string{"name", "geom"},
		conflictKeys: []string{"name"},
	},
}

// Load reads a polygon shapefile and upserts its features into the table
// for kind. The NAME attribute is required; MSAs also read CODE, and
// submarkets read MSA_ID when present. Re-running a load converges: rows
// conflict on their natural key and update in place. Centroids are
// recomputed afterward in SQL.
func Load(ctx context.Context, pool db.Pool, kind Kind, path string) (int64, error) {
	tgt, ok := targets[kind]
	if !ok {
		return 0, eris.Errorf("shapeload: unknown kind %q", kind)
	}

	reader, err := shp.Open(path)
	if err != nil {
		return 0, eris.Wrapf(err, "shapeload: open %s", path)
	}
	defer reader.Close()

	fields := reader.Fields()
	nameIdx, codeIdx, msaIdx := -1, -1, -1
	for i, f := range fields {
		switch strings.ToUpper(strings.TrimRight(string(f.Name[:]), "\x00")) {
		case "NAME":
			nameIdx = i
		case "CODE", "CBSAFP":
			codeIdx = i
		case "MSA_ID":
			msaIdx = i
		}
	}
	if nameIdx < 0 {
		return 0, eris.Errorf("shapeload: %s has no NAME attribute", path)
	}

	var rows [][]any
	var skipped int
	for row := 0; reader.Next(); row++ {
		_, shape := reader.Shape()
		poly, ok := shape.(*shp.Polygon)
		if !ok {
			skipped++
			continue
		}

		ewkb, err := polygonToEWKB(poly)
		if err != nil {
			zap.L().Warn("skipping unparseable shape",
				zap.String("path", path),
				zap.Int("row", row),
				zap.Error(err),
			)
			skipped++
			continue
		}

		name := reader.ReadAttribute(row, nameIdx)
		switch kind {
		case KindMSA:
			code := name
			if codeIdx >= 0 {
				code = reader.ReadAttribute(row, codeIdx)
			}
			rows = append(rows, []any{code, name, ewkb})
		case KindSubmarket:
			var msaID *int64
			if msaIdx >= 0 {
				if v, err := strconv.ParseInt(reader.ReadAttribute(row, msaIdx), 10, 64); err == nil {
					msaID = &v
				}
			}
			rows = append(rows, []any{name, msaID, ewkb})
		case KindTradeArea:
			rows = append(rows, []any{name, ewkb})
		}
	}

	n, err := db.BulkUpsert(ctx, pool, db.UpsertConfig{
		Table:        tgt.table,
		Columns:      tgt.columns,
		ConflictKeys: tgt.conflictKeys,
	}, rows)
	if err != nil {
		return 0, err
	}

	// Centroids feed the distance ordering in the spatial index.
	if _, err := pool.Exec(ctx, "UPDATE "+tgt.table+" SET centroid = ST_Centroid(geom)"); err != nil {
		return n, eris.Wrapf(err, "shapeload: recompute centroids for %s", tgt.table)
	}

	zap.L().Info("shapefile loaded",
		zap.String("kind", string(kind)),
		zap.String("path", path),
		zap.Int64("rows", n),
		zap.Int("skipped", skipped),
	)
	return n, nil
}
