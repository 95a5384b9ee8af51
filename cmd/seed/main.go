// Package main provides a tool to seed the database with test image data.
//
// This creates a handful of users, tags, and images so the search and
// gallery endpoints have something to serve, and prints a bearer token
// for each created user.
//
// Usage:
//
//	DATABASE_PATH=~/driftpix/driftpix.db go run ./cmd/seed
//	DATABASE_PATH=~/driftpix/driftpix.db go run ./cmd/seed --images 200
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/driftpix/driftpix-server/internal/auth"
	"github.com/driftpix/driftpix-server/internal/domain"
	"github.com/driftpix/driftpix-server/internal/id"
	"github.com/driftpix/driftpix-server/internal/logger"
	"github.com/driftpix/driftpix-server/internal/store/sqlite"
)

var (
	imageCount = flag.Int("images", 50, "Number of images to create")
	userCount  = flag.Int("users", 3, "Number of test users to create")
)

var seedTags = []struct {
	name        string
	description string
	nsfw        bool
}{
	{"maid", "Girls in maid outfits", false},
	{"uniform", "School or military uniforms", false},
	{"selfies", "Characters taking selfies", false},
	{"raiden-shogun", "Raiden Shogun from Genshin Impact", false},
	{"oppai", "Large breasts", true},
	{"ero", "Explicit content", true},
}

var extensions = []string{".jpg", ".png", ".gif"}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DATABASE_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/driftpix/driftpix.db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	logg := logger.New(logger.Config{Level: logger.ParseLevel("warn"), Format: "pretty", Writer: os.Stderr})
	s, err := sqlite.Open(dbPath, logg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// Tags first so images can link to them
	tagIDs := make([]int64, 0, len(seedTags))
	nsfwByTag := make(map[int64]bool)
	for _, st := range seedTags {
		tag := &domain.Tag{Name: st.name, Description: st.description, IsNSFW: st.nsfw}
		if err := s.CreateTag(ctx, tag); err != nil {
			// Already present from a previous run, look it up
			existing, lerr := s.ListTags(ctx)
			if lerr != nil {
				log.Fatalf("Failed to list tags: %v", lerr)
			}
			for _, e := range existing {
				if e.Name == st.name {
					tag = &e
					break
				}
			}
		}
		if tag.ID == 0 {
			log.Fatalf("Failed to create tag %q", st.name)
		}
		tagIDs = append(tagIDs, tag.ID)
		nsfwByTag[tag.ID] = st.nsfw
		fmt.Printf("  Tag %q ready (id=%d)\n", st.name, tag.ID)
	}

	// Images with 1-3 tags each
	fmt.Printf("\nCreating %d images...\n", *imageCount)
	for n := 0; n < *imageCount; n++ {
		sig := strings.TrimPrefix(id.MustGenerate("img"), "img-")
		tagID := tagIDs[rng.Intn(len(tagIDs))]

		img := &domain.Image{
			Signature:     sig,
			Extension:     extensions[rng.Intn(len(extensions))],
			IsNSFW:        nsfwByTag[tagID],
			Width:         600 + rng.Intn(2000),
			Height:        600 + rng.Intn(2000),
			ByteSize:      int64(50_000 + rng.Intn(4_000_000)),
			DominantColor: fmt.Sprintf("#%06x", rng.Intn(0x1000000)),
			UploadedAt:    time.Now().UTC().Add(-time.Duration(rng.Intn(90*24)) * time.Hour),
		}
		if err := s.CreateImage(ctx, img); err != nil {
			log.Fatalf("Failed to create image: %v", err)
		}
		if err := s.LinkTag(ctx, img.ID, tagID); err != nil {
			log.Fatalf("Failed to link tag: %v", err)
		}
		// Sometimes pile on a second tag for variety
		if rng.Float32() < 0.4 {
			other := tagIDs[rng.Intn(len(tagIDs))]
			if other != tagID {
				if err := s.LinkTag(ctx, img.ID, other); err != nil {
					log.Fatalf("Failed to link tag: %v", err)
				}
			}
		}
	}
	fmt.Printf("Created %d images\n", *imageCount)

	// Users, with tokens printed so they can be used against the API
	metadataPath := os.Getenv("METADATA_PATH")
	if metadataPath == "" {
		metadataPath = filepath.Dir(dbPath)
	}
	key, err := auth.LoadOrGenerateKey(metadataPath)
	if err != nil {
		log.Fatalf("Failed to load token key: %v", err)
	}
	tokens, err := auth.NewTokenService(key)
	if err != nil {
		log.Fatalf("Failed to create token service: %v", err)
	}

	fmt.Printf("\nCreating %d users...\n", *userCount)
	for n := 1; n <= *userCount; n++ {
		userID := int64(n)
		secret := id.MustGenerate("sec")
		user := domain.User{
			ID:     userID,
			Name:   fmt.Sprintf("seed-user-%d", n),
			Secret: secret,
		}
		if err := s.UpsertUser(ctx, user); err != nil {
			log.Fatalf("Failed to create user %d: %v", userID, err)
		}

		// First user gets admin so full search results are reachable
		if n == 1 {
			if err := s.GrantPermission(ctx, userID, domain.PermissionAdmin, 0); err != nil {
				log.Fatalf("Failed to grant admin: %v", err)
			}
		}

		token, err := tokens.Generate(userID, secret)
		if err != nil {
			log.Fatalf("Failed to issue token for user %d: %v", userID, err)
		}
		role := ""
		if n == 1 {
			role = " (admin)"
		}
		fmt.Printf("  user %d%s token: %s\n", userID, role, token)
	}

	fmt.Println("\nDone.")
}
