package models

// Section is a single class meeting within a subpart (one lecture section,
// one lab section and so on).
type Section struct {
	ID         int64
	SubpartID  int64
	Name       string
	Limit      int
	ExternalID string // registrar identifier (CRN)
	Time       *TimeBlock
	Cancelled  bool
}

// Subpart is one required instructional component of a config (lecture, lab,
// recitation). A complete enrollment picks exactly one section per subpart.
type Subpart struct {
	ID       int64
	ConfigID int64
	Name     string
	Sections []Section
}

// Config is one instructional-method variant of an offering.
type Config struct {
	ID       int64
	Name     string
	Limit    int
	Subparts []Subpart
}

// DistributionType classifies a pairwise constraint between sections of the
// same offering.
type DistributionType string

// Distribution types. Linked sections are scheduled back to back on purpose,
// so their time blocks are not treated as conflicting.
const (
	DistributionLinked          DistributionType = "LINKED_SECTIONS"
	DistributionIgnoreConflicts DistributionType = "IGNORE_CONFLICTS"
)

// Distribution groups sections whose mutual time conflicts are exempt.
type Distribution struct {
	Type       DistributionType
	SectionIDs []int64
}

func (d *Distribution) contains(sectionID int64) bool {
	for _, id := range d.SectionIDs {
		if id == sectionID {
			return true
		}
	}
	return false
}

// Overlapping reports whether two sections conflict in time, honoring the
// offering's distribution exemptions.
func Overlapping(distributions []Distribution, a, b *Section) bool {
	if a == nil || b == nil || !a.Time.Shares(b.Time) {
		return false
	}
	for i := range distributions {
		d := &distributions[i]
		if d.contains(a.ID) && d.contains(b.ID) {
			return false
		}
	}
	return true
}

// OverlappingAny reports whether a section conflicts with any section of the
// given assignment.
func OverlappingAny(distributions []Distribution, s *Section, assignment []*Section) bool {
	for _, other := range assignment {
		if Overlapping(distributions, s, other) {
			return true
		}
	}
	return false
}

// Offering is the full snapshot of how a course is taught in a term: its
// course variants, configs with their subparts and sections, reservations and
// distribution constraints. Loaded fresh per request cycle, never mutated.
type Offering struct {
	ID            int64
	SessionID     int64
	Courses       []Course
	Configs       []Config
	Reservations  []Reservation
	Distributions []Distribution
}

// Course returns the course variant with the given id, or nil.
func (o *Offering) Course(courseID int64) *Course {
	for i := range o.Courses {
		if o.Courses[i].ID == courseID {
			return &o.Courses[i]
		}
	}
	return nil
}

// Config returns the config with the given id, or nil.
func (o *Offering) Config(configID int64) *Config {
	for i := range o.Configs {
		if o.Configs[i].ID == configID {
			return &o.Configs[i]
		}
	}
	return nil
}

// Subpart returns the subpart with the given id, or nil.
func (o *Offering) Subpart(subpartID int64) *Subpart {
	for i := range o.Configs {
		for j := range o.Configs[i].Subparts {
			if o.Configs[i].Subparts[j].ID == subpartID {
				return &o.Configs[i].Subparts[j]
			}
		}
	}
	return nil
}

// Section returns the section with the given id, or nil.
func (o *Offering) Section(sectionID int64) *Section {
	for i := range o.Configs {
		for j := range o.Configs[i].Subparts {
			sp := &o.Configs[i].Subparts[j]
			for k := range sp.Sections {
				if sp.Sections[k].ID == sectionID {
					return &sp.Sections[k]
				}
			}
		}
	}
	return nil
}

// SectionByExternalID returns the section with the given registrar id, or nil.
func (o *Offering) SectionByExternalID(externalID string) *Section {
	for i := range o.Configs {
		for j := range o.Configs[i].Subparts {
			sp := &o.Configs[i].Subparts[j]
			for k := range sp.Sections {
				if sp.Sections[k].ExternalID == externalID {
					return &sp.Sections[k]
				}
			}
		}
	}
	return nil
}

// SectionsOf resolves the section set of an enrollment against this offering.
// Unresolvable ids are skipped.
func (o *Offering) SectionsOf(e *Enrollment) []*Section {
	if e == nil {
		return nil
	}
	sections := make([]*Section, 0, len(e.SectionIDs))
	for _, id := range e.SectionIDs {
		if s := o.Section(id); s != nil {
			sections = append(sections, s)
		}
	}
	return sections
}

// SectionReservations returns the reservations that carve out space in the
// given section.
func (o *Offering) SectionReservations(sectionID int64) []*Reservation {
	var ret []*Reservation
	for i := range o.Reservations {
		if o.Reservations[i].RestrictsToSection(sectionID) {
			ret = append(ret, &o.Reservations[i])
		}
	}
	return ret
}

// ConfigReservations returns the reservations that carve out space in the
// given config.
func (o *Offering) ConfigReservations(configID int64) []*Reservation {
	var ret []*Reservation
	for i := range o.Reservations {
		if o.Reservations[i].RestrictsToConfig(configID) {
			ret = append(ret, &o.Reservations[i])
		}
	}
	return ret
}

// UnreservedSectionSpace returns the number of seats in a section that are
// not claimed by must-use reservations, given the current enrollment counts.
// A non-positive result means only reserved space remains.
func (o *Offering) UnreservedSectionSpace(sectionID int64, enrollments *OfferingEnrollments) int {
	section := o.Section(sectionID)
	if section == nil {
		return 0
	}
	return unreservedSpace(section.Limit, enrollments.CountForSection(sectionID), o.SectionReservations(sectionID), enrollments)
}

// UnreservedConfigSpace is the config-level counterpart of
// UnreservedSectionSpace.
func (o *Offering) UnreservedConfigSpace(configID int64, enrollments *OfferingEnrollments) int {
	config := o.Config(configID)
	if config == nil {
		return 0
	}
	return unreservedSpace(config.Limit, enrollments.CountForConfig(configID), o.ConfigReservations(configID), enrollments)
}

func unreservedSpace(limit, enrolled int, reservations []*Reservation, enrollments *OfferingEnrollments) int {
	// An unlimited must-use reservation claims all remaining seats.
	for _, r := range reservations {
		if r.MustBeUsed && IsUnlimited(r.Limit) {
			return 0
		}
	}
	if IsUnlimited(limit) {
		return int(^uint(0) >> 1) // effectively unlimited
	}
	space := limit - enrolled
	for _, r := range reservations {
		if !r.MustBeUsed {
			continue
		}
		if reserved := r.Limit - enrollments.CountForReservation(r.ID); reserved > 0 {
			space -= reserved
		}
	}
	return space
}

// AllowOverlap reports whether an applicable reservation lifts time-conflict
// checks for the given config and section set.
func (o *Offering) AllowOverlap(student *Student, configID int64, course *Course, sections []*Section) bool {
reservations:
	for i := range o.Reservations {
		r := &o.Reservations[i]
		if !r.AllowOverlap || !r.IsApplicable(student, course) {
			continue
		}
		if len(r.ConfigIDs) > 0 && !containsID(r.ConfigIDs, configID) {
			continue
		}
		for _, s := range sections {
			if restricted := r.SectionIDsOf(s.SubpartID); restricted != nil && !containsID(restricted, s.ID) {
				continue reservations
			}
		}
		return true
	}
	return false
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
