package engine

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/nvkalinin/jalali-calendar/jalali"
	"github.com/nvkalinin/jalali-calendar/log"
	"github.com/nvkalinin/jalali-calendar/store"
	"go.etcd.io/bbolt"
)

const calBucket = "cal"

// Bolt хранит все данные в одном бакете (const calBucket).
// По ключу /<y>/<m> хранится JSON, описывающий все дни месяца персидского календаря. Оба ключа - числовые.
//
// UI выбора даты запрашивает календарь помесячно, поэтому месяц — единица хранения:
// запрос месяца — одно чтение, запрос года — один проход курсора по префиксу.
type Bolt struct {
	db *bbolt.DB
}

func NewBolt(file string) (*Bolt, error) {
	b, err := bbolt.Open(file, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot open bolt store: %w", err)
	}
	log.Printf("[DEBUG] store/bolt opened %s successfully", file)

	return &Bolt{
		db: b,
	}, nil
}

func (b *Bolt) Close() error {
	if err := b.db.Close(); err != nil {
		return fmt.Errorf("cannot close bolt store: %w", err)
	}
	log.Printf("[DEBUG] store/bolt closed successfully")
	return nil
}

func monthKey(y int, mon jalali.Month) []byte {
	return []byte(fmt.Sprintf("/%d/%d", y, mon))
}

func (b *Bolt) FindDay(y int, mon jalali.Month, d int) (*store.Day, bool) {
	days, ok := b.FindMonth(y, mon)
	if !ok {
		return nil, false
	}

	day, ok := days[d]
	if !ok {
		return nil, false
	}

	return &day, true
}

func (b *Bolt) FindMonth(y int, mon jalali.Month) (d store.Days, ok bool) {
	_ = b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(calBucket))
		if bucket == nil {
			return nil
		}

		key := monthKey(y, mon)
		daysJson := bucket.Get(key)
		log.Printf("[DEBUG] store/bolt get key=%s len=%d", key, len(daysJson))
		if daysJson == nil {
			return nil
		}

		if err := json.Unmarshal(daysJson, &d); err != nil {
			d = nil
			log.Printf("[WARN] bolt: invalid month calendar at %s: %v", key, err)
			return nil
		}

		ok = true
		return nil
	})
	return
}

func (b *Bolt) FindYear(y int) (m store.Months, ok bool) {
	_ = b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(calBucket))
		if bucket == nil {
			return nil
		}

		m = make(store.Months, 12)

		prefix := []byte(fmt.Sprintf("/%d/", y))
		log.Printf("[DEBUG] store/bolt getting cursor at %s", prefix)
		c := bucket.Cursor()

		// Ключи в bolt отсортированы по возрастанию.
		// Поэтому можно перейти к первому ключу, который начинается с prefix, затем перебирать ключи,
		// пока не встретится другой префикс, либо не закончится бакет.
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			log.Printf("[DEBUG] store/bolt cursor is at key=%s len=%d", k, len(v))

			monNum, err := strconv.Atoi(string(bytes.TrimPrefix(k, prefix)))
			if err != nil || !jalali.Month(monNum).Valid() {
				log.Printf("[WARN] bolt: invalid month key: %s", k)
				continue
			}

			var d store.Days
			if err := json.Unmarshal(v, &d); err != nil {
				log.Printf("[WARN] bolt: invalid month calendar at %s: %v", k, err)
				continue
			}

			m[jalali.Month(monNum)] = d
		}

		if len(m) == 0 {
			m = nil
			return nil
		}
		ok = true
		return nil
	})
	return
}

func (b *Bolt) PutYear(y int, data store.Months) error {
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(calBucket))
		if err != nil {
			return fmt.Errorf("bolt cannot create bucket '%s': %w", calBucket, err)
		}

		for m, days := range data {
			key := monthKey(y, m)

			val, err := json.Marshal(days)
			if err != nil {
				return fmt.Errorf("bolt cannot marshal %s: %w", key, err)
			}

			log.Printf("[DEBUG] store/bolt put key=%s len=%d", key, len(val))
			if err := bucket.Put(key, val); err != nil {
				return fmt.Errorf("bolt cannot put %s: %w", key, err)
			}
		}
		return nil
	})
}

// Backup записывает в w согласованный снимок всей БД.
func (b *Bolt) Backup(w io.Writer) error {
	return b.db.View(func(tx *bbolt.Tx) error {
		log.Printf("[DEBUG] store/bolt writing backup len=%d", tx.Size())
		_, err := tx.WriteTo(w)
		return err
	})
}
