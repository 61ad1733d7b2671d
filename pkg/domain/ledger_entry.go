package domain

// EntryID returns the ledger identifier of the record.
func (m MovementRecord) EntryID() int64 { return m.ID }

// WithEntryID returns a copy of the record carrying id.
func (m MovementRecord) WithEntryID(id int64) MovementRecord {
	cp := m.Clone()
	cp.ID = id
	return cp
}

// EntityRef returns the room the record belongs to.
func (m MovementRecord) EntityRef() string { return m.RoomID }

// EntryKind returns the movement type.
func (m MovementRecord) EntryKind() string { return string(m.Type) }

// EntryDate returns the record date (YYYY-MM-DD).
func (m MovementRecord) EntryDate() string { return m.Date }

// EntryTime returns the record time (HH:MM).
func (m MovementRecord) EntryTime() string { return m.Time }

// SearchText returns the fields matched by free-text searches.
func (m MovementRecord) SearchText() []string {
	fields := []string{m.RoomID, m.RoomName, m.Observations, m.Actor}
	if m.Guest != nil {
		fields = append(fields, m.Guest.Name, m.Guest.Document)
	}
	return fields
}

// Clone returns a copy of the stock movement.
func (s StockMovement) Clone() StockMovement { return s }

// EntryID returns the ledger identifier of the movement.
func (s StockMovement) EntryID() int64 { return s.ID }

// WithEntryID returns a copy of the movement carrying id.
func (s StockMovement) WithEntryID(id int64) StockMovement {
	s.ID = id
	return s
}

// EntityRef returns the stock item the movement belongs to.
func (s StockMovement) EntityRef() string { return s.ItemID }

// EntryKind returns the movement kind.
func (s StockMovement) EntryKind() string { return string(s.Kind) }

// EntryDate returns the movement date.
func (s StockMovement) EntryDate() string { return s.Date }

// EntryTime returns the movement time.
func (s StockMovement) EntryTime() string { return s.Time }

// SearchText returns the fields matched by free-text searches.
func (s StockMovement) SearchText() []string {
	return []string{s.ItemID, s.ItemName, s.Reason, s.Actor}
}

// Clone returns a copy of the stock item.
func (s StockItem) Clone() StockItem { return s }
