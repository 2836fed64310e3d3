package review

import (
	bolt "go.etcd.io/bbolt"
)

const bucketReviews = "reviews"

func init() {
	initDB["initialize review table"] = func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketReviews))
		return err
	}
}

// Review returns the review with the given key.
func (s *dbStore) Review(key string) (Review, error) {
	var r Review
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketReviews)).Get([]byte(key))
		if v == nil {
			return ErrNoReview
		}
		var err error
		r, err = ParseProof(v)
		return err
	})
	return r, err
}

// Reviews returns all reviews, ordered by key.
func (s *dbStore) Reviews() ([]Review, error) {
	var reviews []Review
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketReviews)).ForEach(func(k, v []byte) error {
			r, err := ParseProof(v)
			if err != nil {
				logger.Printf("skipping bad review %s: %v", k, err)
				return nil
			}
			reviews = append(reviews, r)
			return nil
		})
	})
	return reviews, err
}

// PutReview validates a review and stores it, replacing any review of the
// same crate version. The version becomes a known version of the crate.
func (s *dbStore) PutReview(r Review) error {
	if err := r.Validate(); err != nil {
		return err
	}
	data, err := MarshalProof(r)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		err := tx.Bucket([]byte(bucketReviews)).Put([]byte(r.Key()), data)
		if err != nil {
			return err
		}
		return addVersions(tx, r.Package.Name, r.Package.Version)
	})
}

// DelReview deletes the review with the given key.
func (s *dbStore) DelReview(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(bucketReviews))
		if b.Get([]byte(key)) == nil {
			return ErrNoReview
		}
		return b.Delete([]byte(key))
	})
}
