package sqlite

import (
	"context"
	"database/sql"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/driftpix/driftpix-server/internal/domain"
	"github.com/driftpix/driftpix-server/internal/query"
	"github.com/driftpix/driftpix-server/internal/store"
)

// imageColumns is the ordered list of image columns selected by the inner
// draw query. Must match the scan order in FetchImages.
const imageColumns = `images.image_id, images.signature, images.extension, images.dominant_color,
	images.source, images.uploaded_at, images.is_nsfw, images.width, images.height, images.byte_size`

// FetchImages compiles the composed filters into a single two-level query:
// the inner select draws matching image rows, the outer join collects the
// full tag set of every drawn image. Rows are de-duplicated by image id,
// so an image matching several included tags still appears once with the
// union of its tags.
func (s *Store) FetchImages(ctx context.Context, p store.FetchParams) ([]domain.Image, time.Duration, error) {
	gallery := p.GalleryUserID != 0

	pred := query.And(
		query.Raw("NOT images.under_review AND NOT images.hidden"),
		nsfwPredicate(p.NSFW, p.IncludedTags),
		gifPredicate(p.Gif),
		orientationPredicate(p.Orientation),
		filesPredicate(p.IncludedFiles, false),
		filesPredicate(p.ExcludedFiles, true),
		query.InFold("tags.name", p.IncludedTags),
		excludedTagsPredicate(p.ExcludedTags),
	)
	where, args := query.Build(pred)

	inner := "SELECT " + imageColumns + ","
	if gallery {
		inner += " fav_images.liked_at,"
	}
	inner += " (SELECT COUNT(*) FROM fav_images WHERE fav_images.image_id = images.image_id) AS favorites" +
		" FROM images" +
		" JOIN linked_tags ON linked_tags.image_id = images.image_id" +
		" JOIN tags ON tags.id = linked_tags.tag_id"
	if gallery {
		inner += " JOIN fav_images ON fav_images.image_id = images.image_id AND fav_images.user_id = ?"
		args = append([]any{p.GalleryUserID}, args...)
	}
	inner += " WHERE " + where
	inner += " GROUP BY images.image_id"
	if gallery {
		inner += ", fav_images.liked_at"
	}
	// Included tags are a conjunction: the image must carry every one.
	if n := len(p.IncludedTags); n > 0 {
		inner += " HAVING COUNT(DISTINCT tags.id) = " + strconv.Itoa(n)
	}
	inner += orderClause(p.OrderBy, "", true)
	if p.Limited() {
		if p.Many {
			inner += " LIMIT " + strconv.Itoa(p.BatchLimit)
		} else {
			inner += " LIMIT 1"
		}
	}

	outer := "SELECT q.image_id, q.signature, q.extension, q.dominant_color, q.source," +
		" q.uploaded_at, q.is_nsfw, q.width, q.height, q.byte_size,"
	if gallery {
		outer += " q.liked_at,"
	}
	outer += " q.favorites, tags.id, tags.name, tags.description, tags.is_nsfw" +
		" FROM (" + inner + ") AS q" +
		" JOIN linked_tags ON linked_tags.image_id = q.image_id" +
		" JOIN tags ON tags.id = linked_tags.tag_id" +
		orderClause(p.OrderBy, "q.", false)

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, outer, args...)
	if err != nil {
		return nil, time.Since(start), err
	}
	defer rows.Close()

	var images []domain.Image
	index := make(map[int64]int)
	for rows.Next() {
		var (
			img        domain.Image
			tag        domain.Tag
			source     sql.NullString
			uploadedAt string
			likedAt    sql.NullString
		)
		dest := []any{
			&img.ID, &img.Signature, &img.Extension, &img.DominantColor, &source,
			&uploadedAt, &img.IsNSFW, &img.Width, &img.Height, &img.ByteSize,
		}
		if gallery {
			dest = append(dest, &likedAt)
		}
		dest = append(dest, &img.Favorites, &tag.ID, &tag.Name, &tag.Description, &tag.IsNSFW)
		if err := rows.Scan(dest...); err != nil {
			return nil, time.Since(start), err
		}

		if i, ok := index[img.ID]; ok {
			images[i].Tags = append(images[i].Tags, tag)
			continue
		}

		img.Source = source.String
		if img.UploadedAt, err = parseTime(uploadedAt); err != nil {
			return nil, time.Since(start), err
		}
		if likedAt.Valid {
			t, err := parseTime(likedAt.String)
			if err != nil {
				return nil, time.Since(start), err
			}
			img.LikedAt = &t
		}
		img.Tags = []domain.Tag{tag}
		index[img.ID] = len(images)
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, time.Since(start), err
	}

	// Unlimited random draws skip ORDER BY RANDOM(), so shuffle here.
	if p.OrderBy == domain.OrderRandom {
		rand.Shuffle(len(images), func(i, j int) {
			images[i], images[j] = images[j], images[i]
		})
	}

	return images, time.Since(start), nil
}

// nsfwPredicate encodes the tri-state rating filter. Requesting an NSFW
// tag by name overrides a safe-only rating for that draw, so dedicated
// NSFW tags stay reachable without flipping the flag.
func nsfwPredicate(f domain.NSFWFilter, includedTags []string) query.Expr {
	if f == domain.NSFWAny {
		return nil
	}
	var flag query.Expr
	if f == domain.NSFWTrue {
		flag = query.Raw("images.is_nsfw")
	} else {
		flag = query.Raw("NOT images.is_nsfw")
	}
	if len(includedTags) == 0 {
		return flag
	}
	return query.Or(
		flag,
		query.Exists(
			"SELECT 1 FROM tags t2 WHERE t2.is_nsfw AND LOWER(t2.name) IN ("+query.Placeholders(len(includedTags))+")",
			query.Args(includedTags)...,
		),
	)
}

func gifPredicate(f domain.GifFilter) query.Expr {
	switch f {
	case domain.GifOnly:
		return query.Eq("images.extension", ".gif")
	case domain.GifNone:
		return query.Not(query.Eq("images.extension", ".gif"))
	}
	return nil
}

func orientationPredicate(o domain.Orientation) query.Expr {
	switch o {
	case domain.OrientationLandscape:
		return query.ColCmp("images.width", ">", "images.height")
	case domain.OrientationPortrait:
		return query.ColCmp("images.width", "<", "images.height")
	case domain.OrientationSquare:
		return query.ColCmp("images.width", "=", "images.height")
	}
	return nil
}

// filesPredicate matches images by id or signature. File references from
// the API are either numeric ids or hex signatures.
func filesPredicate(files []string, exclude bool) query.Expr {
	if len(files) == 0 {
		return nil
	}
	e := query.Or(
		query.InFold("CAST(images.image_id AS TEXT)", files),
		query.InFold("images.signature", files),
	)
	if exclude {
		return query.Not(e)
	}
	return e
}

func excludedTagsPredicate(tags []string) query.Expr {
	if len(tags) == 0 {
		return nil
	}
	return query.NotExists(
		"SELECT 1 FROM linked_tags lk JOIN tags t ON lk.tag_id = t.id"+
			" WHERE lk.image_id = images.image_id AND LOWER(t.name) IN ("+query.Placeholders(len(tags))+")",
		query.Args(tags)...,
	)
}

// orderClause renders the ORDER BY for the inner draw (randomEnabled) or
// the outer tag join, which must preserve the inner ranking.
func orderClause(o domain.OrderBy, prefix string, randomEnabled bool) string {
	switch o {
	case domain.OrderRandom:
		if randomEnabled {
			return " ORDER BY RANDOM()"
		}
		return ""
	case domain.OrderFavorites:
		return " ORDER BY " + prefix + "favorites DESC"
	case domain.OrderUploadedAt:
		if prefix == "" {
			return " ORDER BY images.uploaded_at DESC"
		}
		return " ORDER BY " + prefix + "uploaded_at DESC"
	case domain.OrderLikedAt:
		if prefix == "" {
			return " ORDER BY fav_images.liked_at DESC"
		}
		return " ORDER BY " + prefix + "liked_at DESC"
	}
	return ""
}
