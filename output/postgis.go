package output

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/ttpr0/go-coverage/coverage"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/ewkb"
	"golang.org/x/exp/slog"
)

// Subset of pgxpool.Pool used by the sink.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Stores response polygons in a PostGIS table.
type PostGISSink struct {
	pool  Pool
	table string
}

// table may be schema qualified ("coverage.response_polygons").
func NewPostGISSink(pool Pool, table string) (*PostGISSink, error) {
	if table == "" {
		return nil, eris.New("output: postgis table name is empty")
	}
	identifier := pgx.Identifier(strings.Split(table, "."))
	return &PostGISSink{
		pool:  pool,
		table: identifier.Sanitize(),
	}, nil
}

func (self *PostGISSink) EnsureTable(ctx context.Context) error {
	sql := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		run_id uuid NOT NULL,
		threshold integer NOT NULL,
		zone_id text NOT NULL,
		station_id text NOT NULL,
		geom geometry(MultiPolygon, 4326) NOT NULL
	)`, self.table)
	if _, err := self.pool.Exec(ctx, sql); err != nil {
		return eris.Wrapf(err, "output: create table %s", self.table)
	}
	return nil
}

// Inserts all polygons of the buckets in one transaction.
func (self *PostGISSink) Write(ctx context.Context, run_id string, buckets coverage.Buckets) (int64, error) {
	if buckets.Count() == 0 {
		return 0, nil
	}
	tx, err := self.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "output: postgis begin tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	sql := fmt.Sprintf(`INSERT INTO %s (run_id, threshold, zone_id, station_id, geom)
		VALUES ($1, $2, $3, $4, ST_GeomFromEWKB($5))`, self.table)
	var count int64
	for _, bucket := range buckets {
		for _, polygon := range bucket.Polygons {
			data, err := EncodeEWKB(polygon.Polygon)
			if err != nil {
				return 0, err
			}
			if _, err := tx.Exec(ctx, sql, run_id, polygon.Threshold, polygon.ZoneID, polygon.StationID, data); err != nil {
				return 0, eris.Wrapf(err, "output: insert polygon of station %s at %d", polygon.StationID, polygon.Threshold)
			}
			count += 1
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "output: postgis commit")
	}
	slog.Info("output: stored response polygons", "table", self.table, "rows", count, "run", run_id)
	return count, nil
}

// EncodeEWKB converts a lon/lat multipolygon to EWKB with SRID 4326.
func EncodeEWKB(mp orb.MultiPolygon) ([]byte, error) {
	g := geom.NewMultiPolygon(geom.XY).SetSRID(4326)
	for _, polygon := range mp {
		coords := make([][]geom.Coord, 0, len(polygon))
		for _, ring := range polygon {
			ring_coords := make([]geom.Coord, len(ring))
			for i, p := range ring {
				ring_coords[i] = geom.Coord{p[0], p[1]}
			}
			coords = append(coords, ring_coords)
		}
		poly, err := geom.NewPolygon(geom.XY).SetCoords(coords)
		if err != nil {
			return nil, eris.Wrap(err, "output: build polygon")
		}
		if err := g.Push(poly); err != nil {
			return nil, eris.Wrap(err, "output: build multipolygon")
		}
	}
	data, err := ewkb.Marshal(g, ewkb.NDR)
	if err != nil {
		return nil, eris.Wrap(err, "output: encode EWKB")
	}
	return data, nil
}
