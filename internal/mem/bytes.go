package mem

// DefaultPageSize provides a default for Bytes.PageSize.
const DefaultPageSize = 4096

// Bytes implements a byte-oriented paged memory: the backing store for
// the VM heap. Pages are allocated lazily on first store and are never
// reclaimed -- stores only ever grow the address space, matching the
// engine's no-GC, allocate-until-exit heap model.
type Bytes struct {
	PagedCore
	pages [][]byte
}

// Size returns an address one position higher than the last position
// in the last page allocated so far.
func (m *Bytes) Size() uint {
	if i := len(m.bases) - 1; i >= 0 {
		return m.bases[i] + uint(len(m.pages[i]))
	}
	return 0
}

// Load returns a single byte from the given address. Unallocated pages
// read back as zero. Returns an error if addr exceeds any Limit.
func (m *Bytes) Load(addr uint) (byte, error) {
	if err := m.checkLimit(addr, "load"); err != nil {
		return 0, err
	}
	if m.PageSize == 0 || len(m.pages) == 0 {
		return 0, nil
	}
	pageID := m.findPage(addr)
	base := m.bases[pageID]
	page := m.pages[pageID]
	if i := int(addr) - int(base); 0 <= i && i < len(page) {
		return page[i], nil
	}
	return 0, nil
}

// LoadInto reads len(buf) bytes from memory starting at addr, zeroing
// the result where pages were never allocated. Returns an error if
// Limit would be exceeded; no partial load is done in that case.
func (m *Bytes) LoadInto(addr uint, buf []byte) error {
	if len(buf) == 0 {
		return nil
	}
	end := addr + uint(len(buf))
	if err := m.checkLimit(end, "load"); err != nil {
		return err
	}

	for pageID := m.findPage(addr); addr < end && pageID < len(m.bases); pageID++ {
		base := m.bases[pageID]
		if base > end {
			break
		}
		if skip := int(base) - int(addr); skip > 0 {
			if skip >= len(buf) {
				break
			}
			addr += uint(skip)
			for i := range buf[:skip] {
				buf[i] = 0
			}
			buf = buf[skip:]
		}

		page := m.pages[pageID]
		if skip := int(addr) - int(base); skip > 0 {
			if skip >= len(page) {
				continue
			}
			base += uint(skip)
			page = page[skip:]
		}

		n := copy(buf, page)
		buf = buf[n:]
		addr += uint(n)
	}

	for i := range buf {
		buf[i] = 0
	}
	return nil
}

// Stor stores bytes at addr, allocating pages as necessary. Returns an
// error if Limit would be exceeded; no partial store is done.
func (m *Bytes) Stor(addr uint, values ...byte) error {
	if len(values) == 0 {
		return nil
	}
	end := addr + uint(len(values))
	if err := m.checkLimit(end, "stor"); err != nil {
		return err
	}
	if m.PageSize == 0 {
		m.PageSize = DefaultPageSize
	}

	for pageID := m.findPage(addr); addr < end; pageID++ {
		base, size, page := m.allocPage(pageID, addr)
		if skip := addr - base; skip > 0 {
			if skip >= size {
				continue
			}
			base += skip
			page = page[skip:]
		}
		n := copy(page, values)
		values = values[n:]
		addr += uint(n)
	}
	return nil
}

func (m *Bytes) allocPage(pageID int, addr uint) (base, size uint, page []byte) {
	base, size, isNew := m.PagedCore.allocPage(pageID, addr)
	if isNew {
		page = make([]byte, size)
		if pageID == len(m.bases) {
			m.pages = append(m.pages, page)
		} else {
			m.pages = append(m.pages, nil)
			copy(m.pages[pageID+1:], m.pages[pageID:])
			m.pages[pageID] = page
		}
	} else {
		page = m.pages[pageID]
	}
	return base, size, page
}
