package review

import (
	"bytes"
	"sort"

	bolt "go.etcd.io/bbolt"
	"golang.org/x/mod/semver"
)

// Holds one nested bucket per crate, whose keys are the known versions.
const bucketVersions = "versions"

func init() {
	initDB["initialize version table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketVersions))
		return err
	}
}

// AddVersions records versions of a crate as known.
func (s *dbStore) AddVersions(name string, versions ...string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return addVersions(tx, name, versions...)
	})
}

func addVersions(tx *bolt.Tx, name string, versions ...string) error {
	b, err := tx.Bucket([]byte(bucketVersions)).CreateBucketIfNotExists([]byte(name))
	if err != nil {
		return err
	}
	for _, v := range versions {
		if err := b.Put([]byte(v), nil); err != nil {
			return err
		}
	}
	return nil
}

// Versions returns the known versions of a crate, newest first.
func (s *dbStore) Versions(name string) ([]string, error) {
	var versions []string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketVersions)).Bucket([]byte(name))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			versions = append(versions, string(k))
			return nil
		})
	})
	SortVersions(versions)
	return versions, err
}

// Crates returns all crates with a known version, ordered by name.
func (s *dbStore) Crates() ([]Crate, error) {
	var crates []Crate
	err := s.db.View(func(tx *bolt.Tx) error {
		reviews := tx.Bucket([]byte(bucketReviews)).Cursor()
		return tx.Bucket([]byte(bucketVersions)).ForEach(func(k, _ []byte) error {
			c := Crate{Name: string(k)}
			tx.Bucket([]byte(bucketVersions)).Bucket(k).ForEach(func(_, _ []byte) error {
				c.Versions++
				return nil
			})
			prefix := append(append([]byte(nil), k...), '@')
			for rk, _ := reviews.Seek(prefix); rk != nil && bytes.HasPrefix(rk, prefix); rk, _ = reviews.Next() {
				c.Reviews++
			}
			crates = append(crates, c)
			return nil
		})
	})
	return crates, err
}

// SortVersions sorts crate versions by semantic version, newest first.
// Versions that are not valid semantic versions go last, in string order.
func SortVersions(versions []string) {
	sort.SliceStable(versions, func(i, j int) bool {
		vi, vj := "v"+versions[i], "v"+versions[j]
		if c := semver.Compare(vi, vj); c != 0 {
			return c > 0
		}
		return versions[i] < versions[j]
	})
}
