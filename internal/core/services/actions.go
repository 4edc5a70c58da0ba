package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/AchilleasB/membership-console/internal/core/domain"
	"github.com/AchilleasB/membership-console/internal/core/ports"
	"github.com/AchilleasB/membership-console/internal/core/viewstate"
	"github.com/AchilleasB/membership-console/internal/core/views"
)

func (s *ConsoleService) refresh(ctx context.Context) error {
	release, err := s.acquire(formRefresh)
	if err != nil {
		return err
	}
	defer release()

	if inv, ok := s.api.(ports.CacheInvalidator); ok {
		if err := inv.Invalidate(ctx); err != nil {
			s.logger.Warn("invalidating cached records failed", "error", err)
		}
	}

	records, count, err := s.reload(ctx)
	if err != nil {
		return s.fail("Failed to fetch data", err)
	}

	s.mu.Lock()
	s.records = records
	s.visitsToday = count
	s.setMessageLocked(views.MessageSuccess, "Data fetched successfully!")
	s.mu.Unlock()
	return nil
}

func (s *ConsoleService) updateExpiredMemberships(ctx context.Context) error {
	release, err := s.acquire(formExpiry)
	if err != nil {
		return err
	}
	defer release()

	msg, err := s.api.UpdateExpiredMemberships(ctx)
	if err != nil {
		return s.fail("Failed to update expired memberships", err)
	}
	s.record(ctx, ports.ActivityEvent{Type: ports.ActivityExpiryUpdated, Detail: msg})
	return s.commit(ctx, views.MessageSuccess, messageOr(msg, "Expired memberships updated."), nil)
}

func (s *ConsoleService) sendRenewalEmails(ctx context.Context) error {
	release, err := s.acquire(formRenewalEmails)
	if err != nil {
		return err
	}
	defer release()

	msg, err := s.api.SendRenewalEmails(ctx)
	if err != nil {
		return s.fail("Failed to send renewal emails", err)
	}
	s.record(ctx, ports.ActivityEvent{Type: ports.ActivityRenewalEmailsSent, Detail: msg})
	return s.commit(ctx, views.MessageSuccess, messageOr(msg, "Renewal emails sent."), nil)
}

func (s *ConsoleService) showTodaysVisitors(ctx context.Context) error {
	release, err := s.acquire(formTodays)
	if err != nil {
		return err
	}
	defer release()

	groups, err := s.api.VisitsTodayGrouped(ctx)
	if err != nil {
		return s.fail("Failed to load today's visitors", err)
	}
	if groups == nil {
		groups = []domain.VisitorGroup{}
	}

	s.mu.Lock()
	s.todaysVisitors = groups
	s.mu.Unlock()
	return nil
}

func (s *ConsoleService) submitAddRecord(ctx context.Context, a viewstate.SubmitAddRecord) error {
	rec := a.Record
	rec.Name = strings.TrimSpace(rec.Name)
	rec.LastName = strings.TrimSpace(rec.LastName)
	if rec.Name == "" || rec.LastName == "" {
		s.setMessage(views.MessageError, "Please fill in all required fields (First Name, Last Name).")
		return fmt.Errorf("%w: first and last name are required", ErrValidation)
	}
	rec.PrimaryMember = true
	rec.SecondaryMember = false
	for _, p := range []**string{&rec.Email, &rec.Phone, &rec.Address, &rec.City, &rec.State, &rec.ZipCode, &rec.Birthday} {
		if *p != nil {
			*p = domain.StringPtr(**p)
		}
	}

	if st, _ := s.snapshotState(); st.Screen != viewstate.AddRecord {
		return s.navigateError(viewstate.AddRecord)
	}

	release, err := s.acquire(formAddRecord)
	if err != nil {
		return err
	}
	defer release()

	result, err := s.api.AddRecord(ctx, rec)
	if err != nil {
		return s.fail("Failed to add record", err)
	}
	s.record(ctx, ports.ActivityEvent{
		Type:     ports.ActivityMemberAdded,
		FamilyID: result.MemberID,
		Name:     rec.Name,
		LastName: rec.LastName,
	})

	return s.commit(ctx, views.MessageSuccess, messageOr(result.Message, "Record added successfully!"),
		func(st viewstate.State) (viewstate.State, error) {
			s.draft = views.PreviewDraft{}
			return st.EnterFamily(result.MemberID)
		})
}

func (s *ConsoleService) openFamily(familyID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if familyID == "" {
		err := fmt.Errorf("%w: no family selected", viewstate.ErrMissingFocus)
		s.setMessageLocked(views.MessageError, err.Error())
		return err
	}
	if _, ok := domain.PrimaryOf(s.records, familyID); !ok {
		s.setMessageLocked(views.MessageError, "Could not find primary record for this family.")
		return fmt.Errorf("%w: primary member of family %s", ErrRecordNotFound, familyID)
	}
	next, err := s.state.EnterFamily(familyID)
	if err != nil {
		s.setMessageLocked(views.MessageError, err.Error())
		return err
	}
	s.state = next
	return nil
}

func (s *ConsoleService) renewMembership(ctx context.Context) error {
	st, records := s.snapshotState()
	if st.Screen != viewstate.FamilyDetails {
		return s.navigateError(viewstate.FamilyDetails)
	}
	familyID := st.Focus.FamilyID
	primary, ok := domain.PrimaryOf(records, familyID)
	if !ok {
		s.setMessage(views.MessageError, "Error: Primary member record not found for updating membership.")
		return fmt.Errorf("%w: primary member of family %s", ErrRecordNotFound, familyID)
	}

	release, err := s.acquire(formFamily)
	if err != nil {
		return err
	}
	defer release()

	startDate := domain.FormatDateForInput(domain.Today(s.now()))
	msg, err := s.api.UpdateRecord(ctx, familyID, domain.RecordUpdate{
		IsPrimary: true,
		Fields: map[domain.Field]any{
			domain.FieldMemStartDate: startDate,
			domain.FieldActiveFlag:   true,
		},
	})
	if err != nil {
		return s.fail("Failed to update membership", err)
	}
	s.record(ctx, ports.ActivityEvent{
		Type:     ports.ActivityMembershipRenewed,
		FamilyID: familyID,
		Name:     primary.Name,
		LastName: primary.LastName,
		Detail:   "mem_start_date=" + startDate,
	})

	return s.commit(ctx, views.MessageSuccess, messageOr(msg, "Membership dates and status updated successfully!"),
		func(st viewstate.State) (viewstate.State, error) { return st.EnterFamily(familyID) })
}

// checkInFamily records one visit per person present, all under the primary
// member's name, one request after another.
func (s *ConsoleService) checkInFamily(ctx context.Context, a viewstate.CheckInFamily) error {
	if a.People <= 0 {
		s.setMessage(views.MessageError, "Invalid number of people. Please enter a positive number.")
		return fmt.Errorf("%w: number of people must be positive", ErrValidation)
	}
	st, records := s.snapshotState()
	// Check-in ends on home, which only these screens can reach.
	if st.Screen != viewstate.Home && st.Screen != viewstate.FamilyDetails {
		return s.navigateError(viewstate.FamilyDetails)
	}
	primary, ok := domain.PrimaryOf(records, a.FamilyID)
	if !ok {
		s.setMessage(views.MessageError, fmt.Sprintf("Primary member not found for family ID: %s. Cannot record visits.", a.FamilyID))
		return fmt.Errorf("%w: primary member of family %s", ErrRecordNotFound, a.FamilyID)
	}

	release, err := s.acquire(formCheckIn)
	if err != nil {
		return err
	}
	defer release()

	var succeeded int
	var lastErr error
	for i := 0; i < a.People; i++ {
		_, err := s.api.AddVisit(ctx, domain.Visit{
			MemberID:      primary.MemberID,
			Name:          primary.Name,
			LastName:      primary.LastName,
			VisitDatetime: domain.FormatVisitTimestamp(s.now(), s.loc),
		})
		if err != nil {
			lastErr = err
			s.logger.Warn("recording check-in visit failed",
				"family_id", primary.MemberID, "visit", i+1, "error", err)
			continue
		}
		succeeded++
	}

	who := primary.FullName()
	var kind views.MessageKind
	var text string
	switch {
	case succeeded == a.People:
		kind = views.MessageSuccess
		text = fmt.Sprintf("%d visits recorded successfully for %s!", succeeded, who)
	case succeeded > 0:
		kind = views.MessageWarning
		text = fmt.Sprintf("%d out of %d visits recorded for %s. %d failed.", succeeded, a.People, who, a.People-succeeded)
	default:
		kind = views.MessageError
		text = fmt.Sprintf("Failed to record any visits for %s.", who)
	}

	if succeeded > 0 {
		s.record(ctx, ports.ActivityEvent{
			Type:     ports.ActivityFamilyCheckedIn,
			FamilyID: primary.MemberID,
			Name:     primary.Name,
			LastName: primary.LastName,
			Detail:   fmt.Sprintf("%d of %d", succeeded, a.People),
		})
	}

	if err := s.commit(ctx, kind, text, viewstate.State.GoHome); err != nil {
		return err
	}
	if succeeded == 0 {
		return fmt.Errorf("check-in for family %s: %w", primary.MemberID, lastErr)
	}
	return nil
}

func (s *ConsoleService) openRecord(key domain.MemberKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key.IsZero() {
		err := fmt.Errorf("%w: no member selected", viewstate.ErrMissingFocus)
		s.setMessageLocked(views.MessageError, err.Error())
		return err
	}
	m, ok := domain.FindMember(s.records, key)
	if !ok {
		s.setMessageLocked(views.MessageError, fmt.Sprintf("Member %s %s not found in family %s.", key.Name, key.LastName, key.FamilyID))
		return fmt.Errorf("%w: %s %s in family %s", ErrRecordNotFound, key.Name, key.LastName, key.FamilyID)
	}
	next, err := s.state.EnterRecord(key, m.PrimaryMember)
	if err != nil {
		s.setMessageLocked(views.MessageError, err.Error())
		return err
	}
	s.state = next
	return nil
}

// recordUpdate keeps only the fields the focused role may edit. Blank text
// fields are sent as null.
func recordUpdate(focus viewstate.Focus, founding bool, form viewstate.RecordForm) domain.RecordUpdate {
	values := map[domain.Field]any{
		domain.FieldName:           strings.TrimSpace(form.Name),
		domain.FieldLastName:       strings.TrimSpace(form.LastName),
		domain.FieldPhone:          domain.StringPtr(form.Phone),
		domain.FieldBirthday:       domain.StringPtr(form.Birthday),
		domain.FieldGender:         form.Gender,
		domain.FieldEmail:          domain.StringPtr(form.Email),
		domain.FieldAddress:        domain.StringPtr(form.Address),
		domain.FieldCity:           domain.StringPtr(form.City),
		domain.FieldState:          domain.StringPtr(form.State),
		domain.FieldZipCode:        domain.StringPtr(form.ZipCode),
		domain.FieldFoundingFamily: form.FoundingFamily,
		domain.FieldMemStartDate:   domain.StringPtr(form.MemStartDate),
		domain.FieldActiveFlag:     form.ActiveFlag,
	}

	fields := make(map[domain.Field]any)
	for _, f := range viewstate.EditableFields(focus.RecordIsPrimary, founding) {
		fields[f] = values[f]
	}
	return domain.RecordUpdate{
		OriginalName:     focus.Record.Name,
		OriginalLastName: focus.Record.LastName,
		IsPrimary:        focus.RecordIsPrimary,
		Fields:           fields,
	}
}

func (s *ConsoleService) saveRecord(ctx context.Context, form viewstate.RecordForm) error {
	st, records := s.snapshotState()
	if st.Screen != viewstate.RecordDetails {
		return s.navigateError(viewstate.RecordDetails)
	}
	if strings.TrimSpace(form.Name) == "" || strings.TrimSpace(form.LastName) == "" {
		s.setMessage(views.MessageError, "First name and last name are required.")
		return fmt.Errorf("%w: first and last name are required", ErrValidation)
	}
	key := st.Focus.Record
	var founding bool
	if p, ok := domain.PrimaryOf(records, key.FamilyID); ok {
		founding = p.FoundingFamily
	}

	release, err := s.acquire(formRecord)
	if err != nil {
		return err
	}
	defer release()

	msg, err := s.api.UpdateRecord(ctx, key.FamilyID, recordUpdate(st.Focus, founding, form))
	if err != nil {
		return s.fail("Failed to update record", err)
	}
	s.record(ctx, ports.ActivityEvent{
		Type:     ports.ActivityMemberUpdated,
		FamilyID: key.FamilyID,
		Name:     strings.TrimSpace(form.Name),
		LastName: strings.TrimSpace(form.LastName),
	})

	return s.commit(ctx, views.MessageSuccess, messageOr(msg, "Record updated successfully!"),
		func(st viewstate.State) (viewstate.State, error) { return st.EnterFamily(key.FamilyID) })
}

// deleteRecord removes the focused member. Deleting the primary removes the
// whole family and returns home.
func (s *ConsoleService) deleteRecord(ctx context.Context) error {
	st, _ := s.snapshotState()
	if st.Screen != viewstate.RecordDetails {
		return s.navigateError(viewstate.RecordDetails)
	}
	key := st.Focus.Record
	isPrimary := st.Focus.RecordIsPrimary

	release, err := s.acquire(formRecord)
	if err != nil {
		return err
	}
	defer release()

	var member *domain.MemberKey
	if !isPrimary {
		member = &key
	}
	msg, err := s.api.DeleteRecord(ctx, key.FamilyID, member)
	if err != nil {
		return s.fail("Failed to delete record", err)
	}

	evt := ports.ActivityEvent{Type: ports.ActivityMemberDeleted, FamilyID: key.FamilyID, Name: key.Name, LastName: key.LastName}
	if isPrimary {
		evt.Type = ports.ActivityFamilyDeleted
	}
	s.record(ctx, evt)

	return s.commit(ctx, views.MessageSuccess, messageOr(msg, "Record deleted successfully!"),
		func(st viewstate.State) (viewstate.State, error) {
			if isPrimary {
				return st.GoHome()
			}
			return st.EnterFamily(key.FamilyID)
		})
}

func (s *ConsoleService) addSecondaryMember(ctx context.Context, a viewstate.AddSecondaryMember) error {
	st, _ := s.snapshotState()
	if st.Screen != viewstate.ManageSecondaryMembers {
		return s.navigateError(viewstate.ManageSecondaryMembers)
	}
	name, lastName := strings.TrimSpace(a.Name), strings.TrimSpace(a.LastName)
	if name == "" || lastName == "" {
		s.setMessage(views.MessageError, "Please fill in First Name and Last Name.")
		return fmt.Errorf("%w: first and last name are required", ErrValidation)
	}
	familyID := st.Focus.FamilyID

	release, err := s.acquire(formSecondary)
	if err != nil {
		return err
	}
	defer release()

	msg, err := s.api.AddSecondaryMember(ctx, domain.NewSecondaryMember{
		PrimaryMemberID: familyID,
		Name:            name,
		LastName:        lastName,
		Phone:           domain.StringPtr(a.Phone),
		Birthday:        domain.StringPtr(a.Birthday),
		Gender:          a.Gender,
	})
	if err != nil {
		return s.fail("Failed to add secondary member", err)
	}
	s.record(ctx, ports.ActivityEvent{Type: ports.ActivitySecondaryAdded, FamilyID: familyID, Name: name, LastName: lastName})

	return s.commit(ctx, views.MessageSuccess, messageOr(msg, "Secondary member added successfully!"),
		func(st viewstate.State) (viewstate.State, error) { return st.EnterManageSecondary(familyID) })
}

func (s *ConsoleService) deleteSecondaryMember(ctx context.Context, a viewstate.DeleteSecondaryMember) error {
	st, records := s.snapshotState()
	if st.Screen != viewstate.ManageSecondaryMembers {
		return s.navigateError(viewstate.ManageSecondaryMembers)
	}
	key := domain.MemberKey{FamilyID: st.Focus.FamilyID, Name: a.Name, LastName: a.LastName}
	m, ok := domain.FindMember(records, key)
	if !ok || m.PrimaryMember {
		s.setMessage(views.MessageError, fmt.Sprintf("Secondary member %s %s not found.", a.Name, a.LastName))
		return fmt.Errorf("%w: secondary member %s %s", ErrRecordNotFound, a.Name, a.LastName)
	}

	release, err := s.acquire(formSecondary)
	if err != nil {
		return err
	}
	defer release()

	msg, err := s.api.DeleteRecord(ctx, key.FamilyID, &key)
	if err != nil {
		return s.fail("Failed to delete secondary member", err)
	}
	s.record(ctx, ports.ActivityEvent{Type: ports.ActivitySecondaryDeleted, FamilyID: key.FamilyID, Name: key.Name, LastName: key.LastName})

	return s.commit(ctx, views.MessageSuccess, messageOr(msg, "Secondary member deleted successfully!"),
		func(st viewstate.State) (viewstate.State, error) { return st.EnterManageSecondary(key.FamilyID) })
}

func (s *ConsoleService) openAddVisit(key domain.MemberKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := domain.FindMember(s.records, key); !ok && !key.IsZero() {
		s.setMessageLocked(views.MessageError, fmt.Sprintf("Member %s %s not found.", key.Name, key.LastName))
		return fmt.Errorf("%w: %s %s in family %s", ErrRecordNotFound, key.Name, key.LastName, key.FamilyID)
	}
	next, err := s.state.EnterAddVisit(key)
	if err != nil {
		s.setMessageLocked(views.MessageError, err.Error())
		return err
	}
	s.state = next
	return nil
}

func (s *ConsoleService) submitVisit(ctx context.Context, a viewstate.SubmitVisit) error {
	st, _ := s.snapshotState()
	if st.Screen != viewstate.AddVisit {
		return s.navigateError(viewstate.AddVisit)
	}
	at, ok := domain.ParseDateTimeInput(a.VisitDatetime, s.loc)
	if !ok {
		s.setMessage(views.MessageError, "Please enter a valid visit date and time.")
		return fmt.Errorf("%w: visit date and time %q", ErrValidation, a.VisitDatetime)
	}
	member := st.Focus.AddVisitMember

	release, err := s.acquire(formAddVisit)
	if err != nil {
		return err
	}
	defer release()

	msg, err := s.api.AddVisit(ctx, domain.Visit{
		MemberID:      member.FamilyID,
		Name:          member.Name,
		LastName:      member.LastName,
		VisitDatetime: domain.FormatVisitTimestamp(at, s.loc),
	})
	if err != nil {
		return s.fail("Failed to add visit", err)
	}
	s.record(ctx, ports.ActivityEvent{
		Type:     ports.ActivityVisitRecorded,
		FamilyID: member.FamilyID,
		Name:     member.Name,
		LastName: member.LastName,
		Detail:   domain.FormatVisitTimestamp(at, s.loc),
	})

	return s.commit(ctx, views.MessageSuccess, messageOr(msg, "Visit added successfully!"), viewstate.State.CloseAddVisit)
}

// openMemberVisits loads the member's visits and opens the calendar on the
// current month. Month navigation afterwards works on the loaded visits.
func (s *ConsoleService) openMemberVisits(ctx context.Context, key domain.MemberKey) error {
	st, records := s.snapshotState()
	if !viewstate.CanTransition(st.Screen, viewstate.MemberVisits) {
		return s.navigateError(viewstate.FamilyDetails)
	}
	if key.IsZero() {
		err := fmt.Errorf("%w: no member selected", viewstate.ErrMissingFocus)
		s.setMessage(views.MessageError, err.Error())
		return err
	}
	var memStart domain.Member
	if p, ok := domain.PrimaryOf(records, key.FamilyID); ok {
		memStart = p
	}
	start, _ := domain.ParseDatePtr(memStart.MemStartDate, s.loc)

	release, err := s.acquire(formVisits)
	if err != nil {
		return err
	}
	defer release()

	raw, err := s.api.MemberVisits(ctx, key)
	if err != nil {
		return s.fail("Failed to load visit history", err)
	}
	visits := domain.ParseVisits(raw, s.loc)

	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := s.state.EnterMemberVisits(key, start, domain.MonthOf(s.now(), s.loc))
	if err != nil {
		s.setMessageLocked(views.MessageError, err.Error())
		return err
	}
	s.state = next
	s.visits = visits
	return nil
}

func (s *ConsoleService) navigateError(want viewstate.Screen) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := fmt.Errorf("%w: action requires %s, current screen is %s", viewstate.ErrInvalidTransition, want, s.state.Screen)
	s.setMessageLocked(views.MessageError, err.Error())
	return err
}
