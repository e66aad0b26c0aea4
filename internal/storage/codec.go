package storage

import (
	"encoding/json"
	"errors"

	"foldcode/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeEntry(e model.Entry) ([]byte, error) {
	return json.Marshal(e)
}

func DecodeEntry(data []byte) (model.Entry, error) {
	var entry model.Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return model.Entry{}, err
	}
	if err := checkVersion(entry.VersionedRecord); err != nil {
		return model.Entry{}, err
	}
	return entry, nil
}

func EncodeBatch(b model.BatchSummary) ([]byte, error) {
	return json.Marshal(b)
}

func DecodeBatch(data []byte) (model.BatchSummary, error) {
	var batch model.BatchSummary
	if err := json.Unmarshal(data, &batch); err != nil {
		return model.BatchSummary{}, err
	}
	if err := checkVersion(batch.VersionedRecord); err != nil {
		return model.BatchSummary{}, err
	}
	return batch, nil
}

func EncodeLookup(entries []model.LookupEntry) ([]byte, error) {
	return json.Marshal(entries)
}

func DecodeLookup(data []byte) ([]model.LookupEntry, error) {
	var entries []model.LookupEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
